package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Expert represents a chat with one configured persona.
type Expert struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	chat      *genai.Chat
}

// NewAdvisor returns the trading advisor, grounded on the given holdings
// report.
func NewAdvisor(report string) *Expert {
	return &Expert{
		Name:      "Advisor",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a prudent trading advisor for a paper-trading account.
			All the money is simulated; there is no real financial risk, but
			treat the account as if it were real.

			Answer questions about the account below, explain positions and
			their performance, and discuss ideas. Always state that forecasts
			are model estimates, not guarantees. Keep answers short.

			The current account is:

			` + report}}},
		},
	}
}

// Start creates the underlying chat session.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// Ask is a simple wrapper on top of Chat.Send to make it simpler for callers.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from %s", e.Name)
	}
	return resp.Candidates[0].Content, nil
}
