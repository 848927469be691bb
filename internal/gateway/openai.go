package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIOptions configures the OpenAI-compatible backend.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAI answers through an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI backend. SDK retries are disabled: the gateway
// makes exactly one attempt per call.
func NewOpenAI(opts OpenAIOptions) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), model: model}
}

func (o *OpenAI) Ask(ctx context.Context, prompt string, contextMessages []inbox.Message) (Reply, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(prompt, contextMessages)),
		},
	})
	if err != nil {
		return Reply{}, classify("openai", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Reply{Text: NoReplyText}, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Reply{Text: NoReplyText}, nil
	}
	return Reply{Text: text}, nil
}
