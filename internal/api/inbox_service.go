package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// InboxService serves the conversation store.
type InboxService struct {
	store   *inbox.Store
	copilot *copilot.Controller
	bus     *bus.Bus
	logger  *zap.Logger
}

// NewInboxService creates the inbox service. Selecting a thread also
// restores its copilot history through ctl.
func NewInboxService(store *inbox.Store, ctl *copilot.Controller, b *bus.Bus, logger *zap.Logger) *InboxService {
	return &InboxService{store: store, copilot: ctl, bus: b, logger: logger}
}

func (s *InboxService) ListThreads(_ context.Context, _ *ListThreadsRequest) (*ListThreadsResponse, error) {
	return &ListThreadsResponse{Threads: s.store.ListThreads(), Selected: s.store.Selected()}, nil
}

func (s *InboxService) GetThread(_ context.Context, req *GetThreadRequest) (*ThreadResponse, error) {
	t, err := s.store.Thread(req.ThreadID)
	if err != nil {
		return nil, toStatus("get thread", err)
	}
	return &ThreadResponse{Thread: t}, nil
}

func (s *InboxService) SelectThread(ctx context.Context, req *SelectThreadRequest) (*SelectThreadResponse, error) {
	t, err := s.store.SelectThread(ctx, req.ThreadID)
	if err != nil {
		return nil, toStatus("select thread", err)
	}
	view, err := s.copilot.View(ctx, t.ID)
	if err != nil {
		return nil, toStatus("open copilot history", err)
	}
	return &SelectThreadResponse{Thread: t, Copilot: view}, nil
}

func (s *InboxService) AppendMessage(ctx context.Context, req *AppendMessageRequest) (*ThreadResponse, error) {
	t, err := s.store.AppendMessage(ctx, req.ThreadID, inbox.Message{Sender: req.Sender, Text: req.Text})
	if err != nil {
		return nil, toStatus("append message", err)
	}
	return &ThreadResponse{Thread: t}, nil
}

// WatchEvents streams bus events until the client goes away.
func (s *InboxService) WatchEvents(req *WatchEventsRequest, stream grpc.ServerStream) error {
	ch, unsub := s.bus.Subscribe(req.Prefix, 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			env, err := envelope(evt)
			if err != nil {
				s.logger.Warn("failed to encode event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.SendMsg(env); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func envelope(evt bus.Event) (*EventEnvelope, error) {
	env := &EventEnvelope{
		ID:         uuid.NewString(),
		Kind:       evt.Kind,
		ThreadID:   evt.ThreadID,
		OccurredAt: evt.Timestamp,
	}
	if evt.Payload != nil {
		raw, err := json.Marshal(evt.Payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return env, nil
}
