package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamingProvider is implemented by backends that can deliver the
// response incrementally.
type StreamingProvider interface {
	LLMProvider

	// ChatStream starts a generation and returns a handle over the
	// incremental output. Cancelling ctx stops the stream.
	ChatStream(ctx context.Context, history []Message, options ...Option) (*Stream, error)
}

// Stream is a handle over one in-flight generation: a channel of
// incremental chunks plus the final resolved full text.
type Stream struct {
	chunks chan string

	done chan struct{}
	text string
	err  error
}

func NewStream() *Stream {
	return &Stream{
		chunks: make(chan string, 16),
		done:   make(chan struct{}),
	}
}

// Chunks yields output increments in generation order. The channel is
// closed when the stream ends, successfully or not.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Text blocks until the stream ends and returns the full concatenated
// text, or the terminal error.
func (s *Stream) Text() (string, error) {
	<-s.done
	return s.text, s.err
}

// Push appends one chunk. Producer side only.
func (s *Stream) Push(chunk string) {
	s.chunks <- chunk
}

// Finish resolves the stream. Producer side only; call exactly once.
func (s *Stream) Finish(text string, err error) {
	s.text = text
	s.err = err
	close(s.chunks)
	close(s.done)
}
