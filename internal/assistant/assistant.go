// Package assistant answers free-text questions from local session and calendar data,
// using a chat model only to phrase the answer.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/session"
)

type State string

const (
	StateIdle        State = "idle"
	StateSearching   State = "searching"
	StateSummarizing State = "summarizing"
	StateAnswered    State = "answered"
	StateFailed      State = "failed"
)

var ErrQuotaExhausted = errors.New("daily AI quota reached. Try again tomorrow")

const coachPreamble = `You are the cognitive-training coach of the Neuronest app.
Answer the user's question using only the app data provided.
- Speak in a coaching tone. Never diagnose or give medical treatment advice.
- If the data is insufficient, say that the app has no records to answer with confidence and suggest how to start recording them.
- End your answer with exactly one concrete next action.`

// SessionLister supplies the play history in insertion order.
type SessionLister interface {
	All(ctx context.Context) ([]session.GameSession, error)
}

// Gate limits remote calls. CanUse is checked before the call and MarkUsed after a successful answer.
type Gate interface {
	CanUse(ctx context.Context) (bool, error)
	MarkUsed(ctx context.Context) error
}

type Result struct {
	State   State  `json:"state"`
	Query   string `json:"query,omitempty"`
	Hits    []Hit  `json:"hits,omitempty"`
	Context string `json:"context,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

type Assistant struct {
	client   inference.Client
	sessions SessionLister
	events   calendar.Source
	gate     Gate
	limits   Limits

	mu         sync.Mutex
	seq        uint64
	state      State
	lastResult Result
}

type Option func(*Assistant)

func WithGate(gate Gate) Option {
	return func(a *Assistant) {
		a.gate = gate
	}
}

func WithLimits(limits Limits) Option {
	return func(a *Assistant) {
		a.limits = limits.withDefaults()
	}
}

// New creates an assistant. A nil event source means no calendar data.
func New(client inference.Client, sessions SessionLister, events calendar.Source, opts ...Option) *Assistant {
	if events == nil {
		events = calendar.StaticSource(nil)
	}
	a := &Assistant{
		client:   client,
		sessions: sessions,
		events:   events,
		limits:   DefaultLimits(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// LastResult returns the result of the most recently issued query that has finished.
func (a *Assistant) LastResult() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResult
}

// Ask answers one query. An empty query does nothing and returns an idle result.
// When queries overlap, only the latest one updates State and LastResult.
// Remote failures are not retried.
func (a *Assistant) Ask(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{State: StateIdle}
	}

	seq := a.begin()
	result := Result{Query: query}

	sessions, err := a.sessions.All(ctx)
	if err != nil {
		return a.finish(seq, a.fail(result, fmt.Errorf("sessions.All() > %w", err)))
	}
	events, err := a.events.Events(ctx)
	if err != nil {
		slog.Default().Warn("calendar events unavailable", "error", err)
		events = nil
	}

	result.Hits = LocalSearch(query, sessions, events, a.limits)
	result.Context = BuildContext(result.Hits, sessions, a.limits.SummaryWindow)
	a.transition(seq, StateSummarizing)

	if a.gate != nil {
		ok, err := a.gate.CanUse(ctx)
		if err != nil {
			return a.finish(seq, a.fail(result, fmt.Errorf("gate.CanUse() > %w", err)))
		}
		if !ok {
			return a.finish(seq, a.fail(result, ErrQuotaExhausted))
		}
	}

	answer, err := a.client.Generate(ctx, inference.GenerateRequest{
		SystemPrompt: coachPreamble,
		UserPrompt:   userPrompt(query, result.Context),
	})
	if err != nil {
		return a.finish(seq, a.fail(result, fmt.Errorf("client.Generate() > %w", err)))
	}

	if a.gate != nil {
		if err := a.gate.MarkUsed(ctx); err != nil {
			slog.Default().Warn("failed to record quota usage", "error", err)
		}
	}

	result.State = StateAnswered
	result.Answer = answer
	return a.finish(seq, result)
}

func (a *Assistant) begin() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.state = StateSearching
	return a.seq
}

func (a *Assistant) transition(seq uint64, state State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq == a.seq {
		a.state = state
	}
}

func (a *Assistant) finish(seq uint64, result Result) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq == a.seq {
		a.state = result.State
		a.lastResult = result
	}
	return result
}

func (a *Assistant) fail(result Result, err error) Result {
	result.State = StateFailed
	result.Err = err
	if errors.Is(err, ErrQuotaExhausted) {
		result.Message = ErrQuotaExhausted.Error()
	} else {
		result.Message = inference.UserMessage(errors.Unwrap(err))
	}
	return result
}

func userPrompt(query, data string) string {
	return fmt.Sprintf("User question:\n%s\n\nApp data:\n%s", query, data)
}
