package providers

import "context"

// LLMClient is implemented by every model provider. Generate sends a single user
// prompt and returns the model's text reply. Implementations are safe for
// concurrent use and honour ctx cancellation and deadlines.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
