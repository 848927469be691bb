package api

import (
	"context"

	"google.golang.org/grpc"
)

const (
	InboxServiceName   = "inbox.v1.InboxService"
	CopilotServiceName = "inbox.v1.CopilotService"
	RefineServiceName  = "inbox.v1.RefineService"
)

// Full method names, as passed to grpc.ClientConn.Invoke.
const (
	MethodListThreads   = "/" + InboxServiceName + "/ListThreads"
	MethodGetThread     = "/" + InboxServiceName + "/GetThread"
	MethodSelectThread  = "/" + InboxServiceName + "/SelectThread"
	MethodAppendMessage = "/" + InboxServiceName + "/AppendMessage"
	MethodWatchEvents   = "/" + InboxServiceName + "/WatchEvents"

	MethodAsk          = "/" + CopilotServiceName + "/Ask"
	MethodHistory      = "/" + CopilotServiceName + "/History"
	MethodMarkRevealed = "/" + CopilotServiceName + "/MarkRevealed"
	MethodClearHistory = "/" + CopilotServiceName + "/ClearHistory"

	MethodRefine = "/" + RefineServiceName + "/Refine"
	MethodFormat = "/" + RefineServiceName + "/Format"
)

type InboxServer interface {
	ListThreads(context.Context, *ListThreadsRequest) (*ListThreadsResponse, error)
	GetThread(context.Context, *GetThreadRequest) (*ThreadResponse, error)
	SelectThread(context.Context, *SelectThreadRequest) (*SelectThreadResponse, error)
	AppendMessage(context.Context, *AppendMessageRequest) (*ThreadResponse, error)
	WatchEvents(*WatchEventsRequest, grpc.ServerStream) error
}

type CopilotServer interface {
	Ask(context.Context, *AskRequest) (*AskResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
	MarkRevealed(context.Context, *MarkRevealedRequest) (*Empty, error)
	ClearHistory(context.Context, *ClearHistoryRequest) (*Empty, error)
}

type RefineServer interface {
	Refine(context.Context, *RefineRequest) (*RefineResponse, error)
	Format(context.Context, *FormatRequest) (*EditResponse, error)
}

// unary adapts a typed method to a grpc.MethodDesc.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + service + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			})
		},
	}
}

var InboxServiceDesc = grpc.ServiceDesc{
	ServiceName: InboxServiceName,
	HandlerType: (*InboxServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(InboxServiceName, "ListThreads", InboxServer.ListThreads),
		unary(InboxServiceName, "GetThread", InboxServer.GetThread),
		unary(InboxServiceName, "SelectThread", InboxServer.SelectThread),
		unary(InboxServiceName, "AppendMessage", InboxServer.AppendMessage),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(WatchEventsRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(InboxServer).WatchEvents(in, stream)
			},
		},
	},
}

var CopilotServiceDesc = grpc.ServiceDesc{
	ServiceName: CopilotServiceName,
	HandlerType: (*CopilotServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CopilotServiceName, "Ask", CopilotServer.Ask),
		unary(CopilotServiceName, "History", CopilotServer.History),
		unary(CopilotServiceName, "MarkRevealed", CopilotServer.MarkRevealed),
		unary(CopilotServiceName, "ClearHistory", CopilotServer.ClearHistory),
	},
}

var RefineServiceDesc = grpc.ServiceDesc{
	ServiceName: RefineServiceName,
	HandlerType: (*RefineServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(RefineServiceName, "Refine", RefineServer.Refine),
		unary(RefineServiceName, "Format", RefineServer.Format),
	},
}

// Register adds all three services to srv.
func Register(srv grpc.ServiceRegistrar, in InboxServer, cp CopilotServer, rf RefineServer) {
	srv.RegisterService(&InboxServiceDesc, in)
	srv.RegisterService(&CopilotServiceDesc, cp)
	srv.RegisterService(&RefineServiceDesc, rf)
}
