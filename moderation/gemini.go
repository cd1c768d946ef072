package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiTimeout = 5 * time.Second

	reasonAPIFailure   = "API failure, allowing message"
	reasonParseFailure = "Parsing failed but allowing message"
)

// generator is the slice of the genai models API the classifier relies on.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClassifier asks a Gemini model to judge the text and parses its JSON answer.
type GeminiClassifier struct {
	models  generator
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewGeminiClassifier(ctx context.Context, cfg GeminiConfig, log *slog.Logger) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newGeminiClassifier(client.Models, cfg, log), nil
}

func newGeminiClassifier(models generator, cfg GeminiConfig, log *slog.Logger) *GeminiClassifier {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGeminiTimeout
	}
	return &GeminiClassifier{models: models, model: cfg.Model, timeout: cfg.Timeout, log: log}
}

// Classify never returns an error: an unreachable model or an unreadable answer yields
// StatusUnavailable with the original text.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	res, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(text)), cfg)
	if err != nil {
		g.log.Warn("Classifier unavailable, allowing message",
			"model", g.model,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return Verdict{Status: StatusUnavailable, CleanText: text, Reason: reasonAPIFailure}
	}

	var raw string
	if res != nil {
		raw = res.Text()
	}
	verdict, err := ParseVerdict(raw, text)
	if err != nil {
		g.log.Warn("Classifier answer unreadable, allowing message",
			"model", g.model,
			"error", err)
		return Verdict{Status: StatusUnavailable, CleanText: text, Reason: reasonParseFailure}
	}

	g.log.Debug("Classification done",
		"status", verdict.Status.String(),
		"latency_ms", time.Since(start).Milliseconds())
	return verdict
}
