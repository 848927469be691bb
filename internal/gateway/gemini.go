package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/matheus3301/inbox/internal/inbox"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiOptions configures the Gemini backend.
type GeminiOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a proxy or tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini answers through the Gemini generateContent API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Ask(ctx context.Context, prompt string, contextMessages []inbox.Message) (Reply, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(prompt, contextMessages)), nil)
	if err != nil {
		return Reply{}, classify("gemini", err)
	}
	return geminiReply(resp), nil
}

// geminiReply extracts the first candidate's text and citations.
func geminiReply(resp *genai.GenerateContentResponse) Reply {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Reply{Text: NoReplyText}
	}
	cand := resp.Candidates[0]

	var b strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return Reply{Text: NoReplyText}
	}

	reply := Reply{Text: text}
	if cand.CitationMetadata != nil {
		for i, c := range cand.CitationMetadata.Citations {
			if c == nil {
				continue
			}
			id := c.URI
			if id == "" {
				id = fmt.Sprintf("citation-%d", i+1)
			}
			title := c.Title
			if title == "" {
				title = id
			}
			reply.Sources = append(reply.Sources, Source{ID: id, Title: title})
		}
	}
	return reply
}
