// Package server provides Connect RPC handlers for the coach service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/neuronest/internal/assistant"
	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/config"
	"github.com/at-ishikawa/neuronest/internal/focus"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/report"
	"github.com/at-ishikawa/neuronest/internal/reward"
	"github.com/at-ishikawa/neuronest/internal/session"
)

const CoachServiceName = "neuronest.v1.CoachService"

const (
	RecordSessionProcedure  = "/" + CoachServiceName + "/RecordSession"
	ListSessionsProcedure   = "/" + CoachServiceName + "/ListSessions"
	GetFocusProcedure       = "/" + CoachServiceName + "/GetFocus"
	GetReportProcedure      = "/" + CoachServiceName + "/GetReport"
	SearchProcedure         = "/" + CoachServiceName + "/Search"
	GetLedgerProcedure      = "/" + CoachServiceName + "/GetLedger"
	AddWatchCreditProcedure = "/" + CoachServiceName + "/AddWatchCredit"
	GetQuotaProcedure       = "/" + CoachServiceName + "/GetQuota"
)

const (
	ScoringLive  = "live"
	ScoringQuota = "quota"
)

type RecordSessionRequest struct {
	Game            string    `json:"game" validate:"oneof=matching NumberMemory"`
	Scoring         string    `json:"scoring" validate:"omitempty,oneof=live quota"`
	Correct         int       `json:"correct" validate:"gte=0"`
	Wrong           int       `json:"wrong" validate:"gte=0"`
	LevelReached    int       `json:"levelReached" validate:"gte=0"`
	DurationSec     float64   `json:"durationSec" validate:"gte=0"`
	ReactionTimesMs []float64 `json:"reactionTimesMs"`
}

type RecordSessionResponse struct {
	Session session.GameSession `json:"session"`
}

type ListSessionsRequest struct {
	// Limit keeps only the most recent sessions. Zero returns all of them.
	Limit int `json:"limit" validate:"gte=0"`
}

type ListSessionsResponse struct {
	Sessions []session.GameSession `json:"sessions"`
}

// DefaultTrendDays is used when GetFocusRequest.Days is zero.
const DefaultTrendDays = 14

type GetFocusRequest struct {
	Days int `json:"days" validate:"gte=0,lte=90"`
}

type GetFocusResponse struct {
	Focus      focus.Result         `json:"focus"`
	TotalScore int                  `json:"totalScore"`
	Daily      []session.DailyPoint `json:"daily"`
	RT         session.RTStats      `json:"rt"`
}

type GetReportRequest struct {
	IncludeAI bool `json:"includeAi"`
}

type GetReportResponse struct {
	Summary  report.Summary      `json:"summary"`
	Chart    []report.ChartPoint `json:"chart"`
	AIReport string              `json:"aiReport,omitempty"`
	Markdown string              `json:"markdown"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type SearchResponse struct {
	Result assistant.Result `json:"result"`
}

type GetLedgerRequest struct{}

type GetLedgerResponse struct {
	Status reward.Status `json:"status"`
}

// AddWatchCreditRequest credits Seconds of watch time, or one completed ad when Completion is set.
type AddWatchCreditRequest struct {
	Seconds    int  `json:"seconds" validate:"required_without=Completion,gte=0"`
	Completion bool `json:"completion"`
}

type AddWatchCreditResponse struct {
	Granted bool          `json:"granted"`
	Status  reward.Status `json:"status"`
}

type GetQuotaRequest struct{}

type GetQuotaResponse struct {
	Enabled   bool `json:"enabled"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

// CoachHandler serves sessions, focus, reports, the assistant, the reward ledger and the quota.
type CoachHandler struct {
	services *bootstrap.Services

	validate *validator.Validate
	trans    ut.Translator
}

func NewCoachHandler(services *bootstrap.Services) (*CoachHandler, error) {
	validate, trans, err := config.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("config.NewValidator() > %w", err)
	}
	return &CoachHandler{
		services: services,
		validate: validate,
		trans:    trans,
	}, nil
}

// NewCoachServiceHandler mounts every procedure and returns the path prefix to register it under.
func NewCoachServiceHandler(h *CoachHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		WithJSON(),
		connect.WithInterceptors(NewMetricsInterceptor(h.services.Metrics)),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RecordSessionProcedure, connect.NewUnaryHandler(RecordSessionProcedure, h.RecordSession, opts...))
	mux.Handle(ListSessionsProcedure, connect.NewUnaryHandler(ListSessionsProcedure, h.ListSessions, opts...))
	mux.Handle(GetFocusProcedure, connect.NewUnaryHandler(GetFocusProcedure, h.GetFocus, opts...))
	mux.Handle(GetReportProcedure, connect.NewUnaryHandler(GetReportProcedure, h.GetReport, opts...))
	mux.Handle(SearchProcedure, connect.NewUnaryHandler(SearchProcedure, h.Search, opts...))
	mux.Handle(GetLedgerProcedure, connect.NewUnaryHandler(GetLedgerProcedure, h.GetLedger, opts...))
	mux.Handle(AddWatchCreditProcedure, connect.NewUnaryHandler(AddWatchCreditProcedure, h.AddWatchCredit, opts...))
	mux.Handle(GetQuotaProcedure, connect.NewUnaryHandler(GetQuotaProcedure, h.GetQuota, opts...))
	return "/" + CoachServiceName + "/", mux
}

// RecordSession scores a finished round and appends it to the history.
func (h *CoachHandler) RecordSession(
	ctx context.Context,
	req *connect.Request[RecordSessionRequest],
) (*connect.Response[RecordSessionResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	msg := req.Msg
	now := h.services.Clock.Now()
	var s session.GameSession
	switch {
	case msg.Game == session.GameMatching:
		s = session.NewMatchingSession(session.MatchingResult{
			CorrectMatches:  msg.Correct,
			WrongMatches:    msg.Wrong,
			ElapsedSeconds:  msg.DurationSec,
			LevelReached:    msg.LevelReached,
			ReactionTimesMs: msg.ReactionTimesMs,
		}, now)
	case msg.Scoring == ScoringQuota:
		s = session.NewNumberMemoryQuotaSession(numberMemoryResult(msg), now)
	default:
		s = session.NewNumberMemorySession(numberMemoryResult(msg), now)
	}

	if err := h.services.Sessions.Add(ctx, s); err != nil {
		return nil, toConnectError("add session", err)
	}
	h.services.Metrics.IncSessionsRecorded(s.Game)

	return connect.NewResponse(&RecordSessionResponse{Session: s}), nil
}

func (h *CoachHandler) ListSessions(
	ctx context.Context,
	req *connect.Request[ListSessionsRequest],
) (*connect.Response[ListSessionsResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	sessions, err := h.services.Sessions.All(ctx)
	if err != nil {
		return nil, toConnectError("load sessions", err)
	}
	if req.Msg.Limit > 0 {
		sessions = session.Recent(sessions, req.Msg.Limit)
	}
	if sessions == nil {
		sessions = []session.GameSession{}
	}
	return connect.NewResponse(&ListSessionsResponse{Sessions: sessions}), nil
}

func (h *CoachHandler) GetFocus(
	ctx context.Context,
	req *connect.Request[GetFocusRequest],
) (*connect.Response[GetFocusResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	days := req.Msg.Days
	if days == 0 {
		days = DefaultTrendDays
	}

	sessions, err := h.services.Sessions.All(ctx)
	if err != nil {
		return nil, toConnectError("load sessions", err)
	}
	return connect.NewResponse(&GetFocusResponse{
		Focus:      focus.Evaluate(sessions),
		TotalScore: session.TotalScoreLast(sessions, focus.WindowSize),
		Daily:      session.DailyScorePoints(sessions, days, h.services.Clock.Now()),
		RT:         session.MatchingRTStats(sessions, focus.WindowSize),
	}), nil
}

// GetReport returns the recent summary and, when asked, the AI-written report.
func (h *CoachHandler) GetReport(
	ctx context.Context,
	req *connect.Request[GetReportRequest],
) (*connect.Response[GetReportResponse], error) {
	sessions, err := h.services.Sessions.All(ctx)
	if err != nil {
		return nil, toConnectError("load sessions", err)
	}

	summary := report.Summarize(sessions)
	res := &GetReportResponse{
		Summary: summary,
		Chart:   report.ChartPoints(sessions),
	}
	if req.Msg.IncludeAI {
		res.AIReport, err = h.services.Reports.Generate(ctx, sessions)
		if err != nil {
			return nil, toConnectError("generate report", err)
		}
	}
	res.Markdown = report.RenderMarkdown(summary, res.AIReport)
	return connect.NewResponse(res), nil
}

// Search asks the assistant. A failed answer is part of the result, not an RPC error.
func (h *CoachHandler) Search(
	ctx context.Context,
	req *connect.Request[SearchRequest],
) (*connect.Response[SearchResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	result := h.services.Assistant.Ask(ctx, req.Msg.Query)
	h.services.Metrics.IncAssistantQueries(string(result.State))
	return connect.NewResponse(&SearchResponse{Result: result}), nil
}

func (h *CoachHandler) GetLedger(
	ctx context.Context,
	_ *connect.Request[GetLedgerRequest],
) (*connect.Response[GetLedgerResponse], error) {
	status, err := h.services.Ledger.Status(ctx)
	if err != nil {
		return nil, toConnectError("load ledger", err)
	}
	return connect.NewResponse(&GetLedgerResponse{Status: status}), nil
}

func (h *CoachHandler) AddWatchCredit(
	ctx context.Context,
	req *connect.Request[AddWatchCreditRequest],
) (*connect.Response[AddWatchCreditResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var granted bool
	var err error
	if req.Msg.Completion {
		granted, err = h.services.Ledger.AddCompletion(ctx)
	} else {
		granted, err = h.services.Ledger.AddWatchCredit(ctx, req.Msg.Seconds)
	}
	if err != nil {
		return nil, toConnectError("add credit", err)
	}
	if granted {
		h.services.Metrics.IncPremiumGrants()
	}

	status, err := h.services.Ledger.Status(ctx)
	if err != nil {
		return nil, toConnectError("load ledger", err)
	}
	return connect.NewResponse(&AddWatchCreditResponse{Granted: granted, Status: status}), nil
}

func (h *CoachHandler) GetQuota(
	ctx context.Context,
	_ *connect.Request[GetQuotaRequest],
) (*connect.Response[GetQuotaResponse], error) {
	q := h.services.Quota
	used, err := q.Used(ctx)
	if err != nil {
		return nil, toConnectError("load quota", err)
	}
	return connect.NewResponse(&GetQuotaResponse{
		Enabled:   h.services.Config.Quota.Enabled,
		Used:      used,
		Limit:     q.Limit(),
		Remaining: max(0, q.Limit()-used),
	}), nil
}

func (h *CoachHandler) validateRequest(msg any) *connect.Error {
	err := h.validate.Struct(msg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Translate(h.trans))
	}
	return connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(messages, "; ")))
}

func numberMemoryResult(msg *RecordSessionRequest) session.NumberMemoryResult {
	return session.NumberMemoryResult{
		Correct:      msg.Correct,
		Wrong:        msg.Wrong,
		LevelReached: msg.LevelReached,
		DurationSec:  msg.DurationSec,
	}
}

func toConnectError(op string, err error) *connect.Error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, inference.ErrConfigurationMissing):
		code = connect.CodeUnavailable
	case errors.Is(err, report.ErrNoSessions):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}
	return connect.NewError(code, fmt.Errorf("%s: %w", op, err))
}
