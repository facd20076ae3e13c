package factory

import (
	"fmt"

	"notesync-core/pkg/llm"
	"notesync-core/pkg/llm/ollama"
)

func NewStreamingProvider(providerType, modelName, baseURL string) (llm.StreamingProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
