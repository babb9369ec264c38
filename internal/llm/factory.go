package llm

import (
	"fmt"
	"strings"

	"github.com/nofnotg/anamnesis/internal/model"
)

// NewProvider creates a narrative provider from configuration. An empty
// provider name means the narrative feature is disabled.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}
