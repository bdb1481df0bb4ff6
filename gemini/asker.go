package gemini

import (
	"context"

	"github.com/fwojciec/spyder"
	"google.golang.org/genai"
)

// DefaultChatModel is used when no chat model is configured.
const DefaultChatModel = "gemini-2.5-flash"

// Ensure Asker implements spyder.Asker at compile time.
var _ spyder.Asker = (*Asker)(nil)

// Asker implements spyder.Asker using Google Gemini.
type Asker struct {
	client *genai.Client
	model  string
}

// NewAsker creates a new Asker for model.
func NewAsker(client *genai.Client, model string) *Asker {
	if model == "" {
		model = DefaultChatModel
	}
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

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: spyder.BuildUserPrompt(results, question)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", spyder.WrapError(spyder.EMODEL, err, "gemini model %q", a.model)
	}
	if result == nil {
		return "", spyder.Errorf(spyder.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: spyder.SystemPrompt}},
		},
		Temperature: &temp,
	}
}
