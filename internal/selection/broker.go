package selection

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"go.uber.org/zap"
)

// Broker applies refinement actions to selections through the gateway.
type Broker struct {
	gateway gateway.Client
	logger  *zap.Logger
}

func NewBroker(g gateway.Client, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{gateway: g, logger: logger}
}

// Apply returns the refined text for span. Gateway failures are returned
// as *gateway.Error; the caller decides where the text goes.
func (b *Broker) Apply(ctx context.Context, span Span, kind ActionKind, contextMessages []inbox.Message, opts Options) (string, error) {
	if strings.TrimSpace(span.Text) == "" {
		return "", fmt.Errorf("%w: empty selection", ErrInvalidRequest)
	}
	prompt, err := Instruction(kind, span.Text, opts)
	if err != nil {
		return "", err
	}

	reply, err := b.gateway.Ask(ctx, prompt, contextMessages)
	if err != nil {
		b.logger.Warn("refine failed",
			zap.String("action", string(kind)),
			zap.String("kind", string(gateway.KindOf(err))),
			zap.Error(err))
		return "", err
	}
	b.logger.Debug("refined selection",
		zap.String("action", string(kind)),
		zap.Int("in_len", len(span.Text)),
		zap.Int("out_len", len(reply.Text)))
	return strings.TrimSpace(reply.Text), nil
}
