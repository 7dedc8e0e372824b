// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.AnswerGenerator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	maxTokens   int
	maxPassages int
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/generation.
	// APIKey defaults to "none" for local services that skip authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		maxTokens:   config.MaxAnswerTokens,
		maxPassages: config.MaxPromptPassages,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new answer generator using the provided configuration.
//
// Returns ai.AnswerGenerator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.AnswerGenerator, error) {
	return newGenerator(config)
}

// GenerateAnswer synthesizes an answer to the question from the evidence
// passages. Evidence beyond the configured passage bound is truncated; the
// ranked order is preserved. With no evidence, the model is not called and a
// refusal answer is returned.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, evidence []core.Evidence) (*ai.Answer, error) {
	if len(evidence) == 0 {
		g.logger.Debug("no evidence supplied, skipping generation")
		return &ai.Answer{Text: noEvidenceAnswer, Confidence: 0, Passages: 0}, nil
	}

	if len(evidence) > g.maxPassages {
		evidence = evidence[:g.maxPassages]
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(answerSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildAnswerPrompt(question, evidence)),
			},
		},
	}

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(g.maxTokens))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return &ai.Answer{Text: noEvidenceAnswer, Confidence: 0, Passages: len(evidence)}, nil
	}

	answer := &ai.Answer{
		Text:       strings.TrimSpace(response.Choices[0].Content),
		Confidence: maxConfidence(evidence),
		Passages:   len(evidence),
	}

	g.logger.Debug("generated answer",
		"passages", answer.Passages,
		"confidence", answer.Confidence,
		"length", len(answer.Text))

	return answer, nil
}

// maxConfidence returns the strongest display confidence in the evidence set.
func maxConfidence(evidence []core.Evidence) float64 {
	var max float64
	for _, ev := range evidence {
		if ev.Confidence > max {
			max = ev.Confidence
		}
	}
	return max
}
