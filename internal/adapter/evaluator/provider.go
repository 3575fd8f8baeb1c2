package evaluator

import (
	"fmt"
	"net/http"

	"essay-hub/internal/config"

	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewTextGenerator builds the model client selected by llm.provider.
func NewTextGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "", "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		return openai.New(opts...)
	case "huggingface":
		opts := []huggingface.Option{
			huggingface.WithToken(cfg.APIKey),
			huggingface.WithModel(cfg.Model),
		}
		if cfg.ServerURL != "" {
			opts = append(opts, huggingface.WithURL(cfg.ServerURL))
		}
		return huggingface.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
