package llm

import (
	"fmt"
	"net/http"

	"github.com/katachat/katareport/internal/config"
)

// NewFromConfig creates the provider named by cfg.Primary.
func NewFromConfig(cfg config.LLMConfig) (Provider, error) {
	client := &http.Client{Timeout: cfg.Timeout()}

	switch cfg.Primary {
	case ProviderOpenAI, "":
		opts := []OpenAIOption{WithOpenAIHTTPClient(client)}
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithOpenAIBaseURL(cfg.BaseURL))
		}
		return NewOpenAIProvider(cfg.OpenAIKey, opts...)

	case ProviderAnthropic:
		opts := []AnthropicOption{WithAnthropicHTTPClient(client)}
		if cfg.Model != "" {
			opts = append(opts, WithAnthropicModel(defaultAnthropicModel(cfg.Model)))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithAnthropicBaseURL(cfg.BaseURL))
		}
		return NewAnthropicProvider(cfg.AnthropicKey, opts...)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, cfg.Primary)
	}
}

// defaultAnthropicModel maps an OpenAI-looking default to an Anthropic model
// so a config that only switches llm.primary still works.
func defaultAnthropicModel(model string) string {
	if len(model) >= 3 && model[:3] == "gpt" {
		return "claude-3-5-haiku-20241022"
	}
	return model
}
