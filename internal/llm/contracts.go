package llm

import "context"

// InvokeRequest carries one prompt to the inference service. Temperature is a
// determinism hint only; the service does not guarantee it.
type InvokeRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Invoker is the interface the pipelines depend on. Invoke returns the raw
// provider response envelope; callers normalize it with a ResponseShape.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) ([]byte, error)
}
