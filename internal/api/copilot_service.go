package api

import (
	"context"

	"github.com/matheus3301/inbox/internal/copilot"
)

// CopilotService serves the copilot controller.
type CopilotService struct {
	ctl *copilot.Controller
}

func NewCopilotService(ctl *copilot.Controller) *CopilotService {
	return &CopilotService{ctl: ctl}
}

// Ask returns as soon as the pending entry exists; the answer arrives as a
// copilot.entry_resolved event.
func (s *CopilotService) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	sub, err := s.ctl.SubmitQuestion(ctx, req.ThreadID, req.Question)
	if err != nil {
		return nil, toStatus("ask", err)
	}
	return &AskResponse{Submission: sub}, nil
}

func (s *CopilotService) History(ctx context.Context, req *HistoryRequest) (*HistoryResponse, error) {
	var (
		entries []copilot.QAEntry
		err     error
	)
	if req.View {
		entries, err = s.ctl.View(ctx, req.ThreadID)
	} else {
		entries, err = s.ctl.History(ctx, req.ThreadID)
	}
	if err != nil {
		return nil, toStatus("history", err)
	}
	return &HistoryResponse{Entries: entries}, nil
}

func (s *CopilotService) MarkRevealed(ctx context.Context, req *MarkRevealedRequest) (*Empty, error) {
	if err := s.ctl.MarkRevealed(ctx, req.ThreadID, req.EntryID); err != nil {
		return nil, toStatus("mark revealed", err)
	}
	return &Empty{}, nil
}

func (s *CopilotService) ClearHistory(ctx context.Context, req *ClearHistoryRequest) (*Empty, error) {
	if err := s.ctl.ClearHistory(ctx, req.ThreadID); err != nil {
		return nil, toStatus("clear history", err)
	}
	return &Empty{}, nil
}
