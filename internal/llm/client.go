package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// VisionClient can answer a prompt about a raw image.
// Implementations encode the image inline; callers pass the bytes as received
// from the platform content endpoint.
type VisionClient interface {
	DescribeImage(ctx context.Context, prompt string, image []byte) (Response, error)
}
