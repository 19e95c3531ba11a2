// Package ai wraps the external AI text/speech collaborator behind a
// small client: argument evaluation, interview question generation,
// conversation summarization and audio transcription. Any
// OpenAI-compatible endpoint works (OPENAI_BASE_URL); evaluation and
// generation failures are classified as upstream errors so callers can
// fall back to the offline evaluator.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/models"
)

const defaultModel = "gpt-4o-mini"

// Client calls the AI collaborator.
type Client struct {
	api   *openai.Client
	model string
}

// NewClientFromEnv builds the client from OPENAI_API_KEY, OPENAI_BASE_URL
// and AI_MODEL. Returns nil when no API key is configured; services
// treat a nil client as "offline mode".
func NewClientFromEnv() *Client {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}

	cfg := openai.DefaultConfig(key)
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}

	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// evaluation is the JSON shape requested from the evaluator.
type evaluation struct {
	Logic         float64 `json:"logic"`
	Clarity       float64 `json:"clarity"`
	Relevance     float64 `json:"relevance"`
	EmotionalBias float64 `json:"emotionalBias"`
	Summary       string  `json:"summary"`
	FactCheck     string  `json:"factCheck"`
}

// Evaluate scores one transcript against the room topic. A malformed
// or empty model response is an upstream error; the caller decides to
// fall back, this client never fabricates scores.
func (c *Client) Evaluate(ctx context.Context, topic, transcript string, mode models.Mode) (models.ScoreSet, error) {
	system := fmt.Sprintf(
		"You are an impartial judge of a %s discussion. Rate the argument on logic, clarity, relevance and emotionalBias, "+
			"each a number from 1 to 10 (emotionalBias: 10 means heavily biased). "+
			"Respond with a JSON object: {\"logic\", \"clarity\", \"relevance\", \"emotionalBias\", \"summary\", \"factCheck\"}. "+
			"summary is 1-2 sentences, factCheck flags dubious claims or is empty.", mode)
	user := fmt.Sprintf("Topic: %s\n\nArgument:\n%s", topic, transcript)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.ScoreSet{}, apperr.Upstreamf("evaluation call failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return models.ScoreSet{}, apperr.Upstreamf("evaluation returned no choices")
	}

	var ev evaluation
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &ev); err != nil {
		return models.ScoreSet{}, apperr.Upstreamf("unparseable evaluation: %v", err)
	}

	return models.ScoreSet{
		Logic:         clampScore(ev.Logic),
		Clarity:       clampScore(ev.Clarity),
		Relevance:     clampScore(ev.Relevance),
		EmotionalBias: clampScore(ev.EmotionalBias),
		Summary:       ev.Summary,
		FactCheck:     ev.FactCheck,
	}, nil
}

// NextQuestion asks the collaborator for exactly one interviewer
// question given the windowed payload: system prompt, optional summary
// of older exchanges, last exchanges verbatim.
func (c *Client) NextQuestion(ctx context.Context, systemPrompt, summary string, window []models.InterviewMessage) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if summary != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Summary of the earlier conversation: " + summary,
		})
	}
	for _, m := range window {
		role := openai.ChatMessageRoleUser
		if m.Speaker == models.SpeakerInterviewer {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", apperr.Upstreamf("question generation failed: %v", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.Upstreamf("question generation returned nothing")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Summarize compresses older exchanges (plus any previous summary) into
// 2-3 lines. The result replaces the previous summary entirely.
func (c *Client) Summarize(ctx context.Context, older []models.InterviewMessage, previous string) (string, error) {
	var b strings.Builder
	if previous != "" {
		b.WriteString("Previous summary:\n")
		b.WriteString(previous)
		b.WriteString("\n\n")
	}
	b.WriteString("Conversation to fold in:\n")
	for _, m := range older {
		b.WriteString(string(m.Speaker))
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Compress the interview conversation below into 2-3 lines. " +
					"Keep topics covered and the candidate's strong and weak moments. Output only the summary.",
			},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return "", apperr.Upstreamf("summarization failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Upstreamf("summarization returned nothing")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe converts an audio payload to text via Whisper. This path
// has no fallback: a failure here is surfaced to the caller rather than
// fabricating a transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", apperr.Upstreamf("transcription failed: %v", err)
	}
	return resp.Text, nil
}
