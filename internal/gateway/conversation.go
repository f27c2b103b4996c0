package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/prompts"
)

// Conversation is an interview chat whose history lives in the service session.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
	Close()
}

// OpenConversation starts an interviewer chat for role at company.
func (g *Gateway) OpenConversation(_ context.Context, company, role string) (Conversation, error) {
	instruction, err := prompts.Render(prompts.Interview, "mock-interviewer", map[string]string{
		"Company": company,
		"Role":    role,
	})
	if err != nil {
		return nil, err
	}

	chat, err := g.client.StartChat(instruction, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Operation: "open conversation", Cause: err}
	}
	return &conversation{chat: chat}, nil
}

type conversation struct {
	chat llm.Chat

	mu     sync.Mutex
	closed bool
}

// Send forwards text and returns the interviewer's reply. A reply without text
// is returned as empty, not as an error.
func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return "", ErrConversationClosed
	}

	reply, err := c.chat.SendMessage(ctx, text)
	if errors.Is(err, llm.ErrEmptyResponse) {
		return "", nil
	}
	if err != nil {
		return "", &APICallError{Operation: "send turn", Cause: err}
	}
	return reply, nil
}

func (c *conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
