package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"placement-portal/internal/ai"
)

// StartConversation opens a Gemini chat session bound to the provided
// system instruction. The returned conversation keeps its own server-side
// history; callers own turn bookkeeping.
func (g *Generator) StartConversation(ctx context.Context, systemInstruction string) (ai.Conversation, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	cfg := &genai.GenerateContentConfig{}
	if instruction := strings.TrimSpace(systemInstruction); instruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		}
	}

	session, err := g.client.Chats.Create(ctx, g.modelName, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	return &conversation{session: session}, nil
}

type conversation struct {
	session *genai.Chat
}

func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("message must not be empty")
	}

	resp, err := c.session.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	output := flattenResponse(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
