package api

import (
	"errors"

	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC status codes.
func toStatus(op string, err error) error {
	var gwErr *gateway.Error
	switch {
	case errors.Is(err, inbox.ErrNotFound), errors.Is(err, copilot.ErrEntryNotFound):
		return grpcstatus.Errorf(codes.NotFound, "%s: %v", op, err)
	case errors.Is(err, selection.ErrInvalidRequest),
		errors.Is(err, selection.ErrStaleSpan),
		errors.Is(err, inbox.ErrInvalidMessage):
		return grpcstatus.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.As(err, &gwErr):
		code := codes.Unavailable
		switch gwErr.Kind {
		case gateway.KindTimeout:
			code = codes.DeadlineExceeded
		case gateway.KindUpstream:
			code = codes.Internal
		}
		return grpcstatus.Errorf(code, "%s: %v", op, err)
	default:
		return grpcstatus.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
