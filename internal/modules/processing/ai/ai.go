package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mx-space/summarizer/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/sony/gobreaker"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
	"go.uber.org/zap"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// ErrNoProvider is returned by Generate when no provider is configured.
var ErrNoProvider = errors.New("no AI provider configured")

// completeFunc sends one system+user exchange to a model and returns its raw text.
type completeFunc func(ctx context.Context, system, user string) (string, error)

// Summarizer generates summaries through the configured provider behind a circuit breaker.
type Summarizer struct {
	complete completeFunc
	lang     string
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewSummarizer builds the language model named by cfg.Provider. An empty
// provider yields a Summarizer whose Generate always returns ErrNoProvider.
func NewSummarizer(cfg config.AIConfig, logger *zap.Logger) (*Summarizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Provider == "" {
		logger.Warn("no AI provider configured, summaries will use the fallback text")
		return newSummarizer(cfg, nil, logger), nil
	}

	model, modelID, err := languageModel(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("AI provider ready", zap.String("provider", cfg.Provider), zap.String("model", modelID))
	return newSummarizer(cfg, generateWith(model, cfg.MaxOutputTokens), logger), nil
}

func newSummarizer(cfg config.AIConfig, complete completeFunc, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		complete: complete,
		lang:     cfg.TargetLanguage,
		breaker:  newBreaker("ai-summary", cfg.Breaker, logger),
		logger:   logger,
	}
}

func languageModel(cfg config.AIConfig) (jetapi.LanguageModel, string, error) {
	if cfg.APIKey == "" {
		return nil, "", fmt.Errorf("ai provider %q: api key is empty", cfg.Provider)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	switch cfg.Provider {
	case ProviderOpenAI:
		modelID := firstNonEmpty(cfg.Model, defaultOpenAIModel)
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(cfg.APIKey),
			openaioption.WithMaxRetries(0),
		}
		if baseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(baseURL+"/"))
		}
		client := openaiclient.NewClient(opts...)
		return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), modelID, nil
	case ProviderAnthropic:
		modelID := firstNonEmpty(cfg.Model, defaultAnthropicModel)
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(cfg.APIKey),
			anthropicoption.WithMaxRetries(0),
		}
		if baseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(baseURL+"/"))
		}
		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), modelID, nil
	default:
		return nil, "", fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

// Generate asks the provider for a summary of text.
func (s *Summarizer) Generate(ctx context.Context, text string) (string, error) {
	if s.complete == nil {
		return "", ErrNoProvider
	}
	out, err := s.breaker.Execute(func() (interface{}, error) {
		system, user := summaryPrompt(s.lang, text)
		raw, err := s.complete(ctx, system, user)
		if err != nil {
			return "", err
		}
		return parseSummary(raw)
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return out.(string), nil
}

// State reports the circuit breaker state, e.g. "closed" or "open".
func (s *Summarizer) State() string {
	return s.breaker.State().String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
