package api

import (
	"context"

	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
)

// RefineService serves selection refinements and composer formatting.
type RefineService struct {
	broker *selection.Broker
	store  *inbox.Store
}

func NewRefineService(broker *selection.Broker, store *inbox.Store) *RefineService {
	return &RefineService{broker: broker, store: store}
}

func (s *RefineService) Refine(ctx context.Context, req *RefineRequest) (*RefineResponse, error) {
	kind, err := selection.ParseAction(req.Action)
	if err != nil {
		return nil, toStatus("refine", err)
	}
	var msgs []inbox.Message
	if req.ThreadID != "" {
		if msgs, err = s.store.Messages(req.ThreadID); err != nil {
			return nil, toStatus("refine", err)
		}
	}

	text, err := s.broker.Apply(ctx, req.Span, kind, msgs, req.Options)
	if err != nil {
		return nil, toStatus("refine", err)
	}
	resp := &RefineResponse{Text: text}
	if req.Buffer != "" {
		resp.Buffer, resp.Cursor, err = selection.Splice(req.Buffer, req.Span, text)
		if err != nil {
			return nil, toStatus("refine", err)
		}
	}
	return resp, nil
}

func (s *RefineService) Format(_ context.Context, req *FormatRequest) (*EditResponse, error) {
	style, err := selection.ParseStyle(req.Style)
	if err != nil {
		return nil, toStatus("format", err)
	}
	buf, cursor, err := selection.Format(req.Buffer, req.Span, style)
	if err != nil {
		return nil, toStatus("format", err)
	}
	return &EditResponse{Buffer: buf, Cursor: cursor}, nil
}
