// Package survey turns a pasted check-in chat into a structured report and a short cheer message.
package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/neuronest/internal/inference"
)

var ErrEmptyChat = errors.New("paste a chat to analyze")

const FallbackCheer = "Great job! Keep it up this week too 💪"

const (
	analysisSystemPrompt = `You are Neuronest AI research assistant.
Analyze chats to extract structured insights. Do not include medical or legal advice.
Keep outputs clear and concise.`

	cheerPrompt = `Write one short, cheerful sentence to encourage the user after completing their weekly check-in survey.
Keep it positive, supportive, and friendly. No medical advice.`

	analysisTemperature = 0.2
)

type Result struct {
	Analysis string `json:"analysis"`
	Cheer    string `json:"cheer"`
}

// Analyzer uses one client for the analysis and another, possibly the same, for the cheer message.
type Analyzer struct {
	analysis inference.Client
	cheer    inference.Client
}

func NewAnalyzer(analysis inference.Client, cheer inference.Client) *Analyzer {
	if cheer == nil {
		cheer = analysis
	}
	return &Analyzer{analysis: analysis, cheer: cheer}
}

// Analyze fails only when the analysis fails. A failed cheer falls back to FallbackCheer.
func (a *Analyzer) Analyze(ctx context.Context, chatText string) (Result, error) {
	chat := strings.TrimSpace(chatText)
	if chat == "" {
		return Result{}, ErrEmptyChat
	}

	analysis, err := a.analysis.Generate(ctx, inference.GenerateRequest{
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   analysisPrompt(chat),
		Temperature:  analysisTemperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("analysis.Generate() > %w", err)
	}

	return Result{Analysis: analysis, Cheer: a.cheerMessage(ctx)}, nil
}

func (a *Analyzer) cheerMessage(ctx context.Context) string {
	cheer, err := a.cheer.Generate(ctx, inference.GenerateRequest{UserPrompt: cheerPrompt})
	if err != nil {
		slog.Default().Warn("cheer message unavailable", "error", err)
		return FallbackCheer
	}
	if strings.TrimSpace(cheer) == "" {
		return FallbackCheer
	}
	return cheer
}

func analysisPrompt(chat string) string {
	return `Analyze the following chat log and produce a structured survey-style report.

Output format:
1) Summary (3 bullets)
2) Detected Topics (up to 8, include short evidence quotes <= 12 words)
3) User Goals & Intent (ranked)
4) Pain Points / Frictions (ranked)
5) Emotion & Tone (short)
6) Suggested Next Actions (5 items)
7) 5 Survey Questions to ask next (multiple-choice)

Chat:
---
` + chat + `
---`
}
