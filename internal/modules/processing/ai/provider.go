package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
)

var errEmptyResponse = errors.New("empty response from AI")

func generateWith(model jetapi.LanguageModel, maxTokens int) completeFunc {
	return func(ctx context.Context, system, user string) (string, error) {
		messages := []jetapi.Message{
			&jetapi.SystemMessage{Content: system},
			&jetapi.UserMessage{Content: jetapi.ContentFromText(user)},
		}
		resp, err := jetai.GenerateText(ctx, messages,
			jetai.WithModel(model),
			jetai.WithMaxOutputTokens(maxTokens),
		)
		if err != nil {
			return "", err
		}
		return responseText(resp)
	}
}

func responseText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.(*jetapi.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyResponse
	}
	return b.String(), nil
}

// parseSummary pulls the summary field out of a model reply. Replies wrapped in
// code fences or surrounded by chatter are accepted as long as one JSON object
// can be cut out of them.
func parseSummary(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if start, end := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}'); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var reply struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return "", errors.New("model reply is not a JSON object")
	}
	summary := strings.TrimSpace(reply.Summary)
	if summary == "" {
		return "", errors.New("model reply has an empty summary")
	}
	return summary, nil
}
