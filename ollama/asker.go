package ollama

import (
	"context"
	"strings"

	"github.com/fwojciec/spyder"
	"github.com/ollama/ollama/api"
)

var _ spyder.Asker = (*Asker)(nil)

// Asker implements spyder.Asker with an Ollama chat model.
type Asker struct {
	client *api.Client
	model  string
}

// NewAsker creates a new Asker for model.
func NewAsker(client *api.Client, model string) *Asker {
	return &Asker{client: client, model: model}
}

// Ask answers a natural language question from the retrieved entries.
func (a *Asker) Ask(ctx context.Context, question string, results []spyder.SearchResult) (string, error) {
	if question == "" {
		return "", spyder.Errorf(spyder.EINVALID, "question required")
	}
	if len(results) == 0 {
		return "", spyder.Errorf(spyder.ENOTFOUND, "no entries found for question")
	}

	stream := false
	req := &api.ChatRequest{
		Model: a.model,
		Messages: []api.Message{
			{Role: "system", Content: spyder.SystemPrompt},
			{Role: "user", Content: spyder.BuildUserPrompt(results, question)},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.4},
	}

	var answer strings.Builder
	err := a.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		answer.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", spyder.WrapError(spyder.EMODEL, err, "chat with model %q", a.model)
	}
	return answer.String(), nil
}
