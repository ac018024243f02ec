package remote

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/errors"
	"context"
	"fmt"
	"log/slog"

	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Backend is what a Server exposes, the Hub in practice.
// CloseSocket is called once the pane listening to a socket went away.
type Backend interface {
	contract.Transport
	CloseSocket(socket domain.SocketID)
}

// Server exposes a backend to remote panes.
type Server struct {
	log          *slog.Logger
	transport    Backend
	streamBuffer int
}

func NewServer(log *slog.Logger, transport Backend, streamBuffer int) *Server {
	return &Server{log: log, transport: transport, streamBuffer: streamBuffer}
}

// GRPCServer builds a gRPC server with the hub service registered.
func (s *Server) GRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(sdkgrpc.UnaryLoggingInterceptor(s.log)))
	server := grpc.NewServer(opts...)
	server.RegisterService(&hubServiceDesc, s)
	return server
}

func (s *Server) call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	reply, err := s.dispatch(ctx, method, req)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return structpb.NewStruct(reply)
}

func (s *Server) dispatch(ctx context.Context, method string, req *structpb.Struct) (map[string]any, error) {
	socket := domain.SocketID(str(req, fieldSocket))
	channel := domain.ChannelID(str(req, fieldChannel))

	switch method {
	case methodCreateSocket:
		id, err := await(ctx, s.transport.CreateSocket)
		return map[string]any{fieldSocket: string(id)}, err

	case methodCreateChannel:
		id, err := await(ctx, func(done func(domain.ChannelID, error)) {
			s.transport.CreateChannel(str(req, fieldName), done)
		})
		return map[string]any{fieldChannel: string(id)}, err

	case methodBind:
		return nil, awaitErr(ctx, func(done func(error)) { s.transport.Bind(socket, channel, done) })

	case methodJoin:
		return nil, awaitErr(ctx, func(done func(error)) { s.transport.Join(channel, done) })

	case methodPart:
		return nil, awaitErr(ctx, func(done func(error)) { s.transport.Part(channel, done) })

	case methodSend:
		payload, err := bytesField(req, fieldPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedMessage, err)
		}
		return nil, awaitErr(ctx, func(done func(error)) { s.transport.Send(channel, payload, done) })

	case methodGetValue:
		value, err := await(ctx, func(done func(string, error)) {
			s.transport.GetValue(channel, str(req, fieldKey), done)
		})
		return map[string]any{fieldValue: value}, err

	case methodSetValue:
		return nil, awaitErr(ctx, func(done func(error)) {
			s.transport.SetValue(channel, str(req, fieldKey), str(req, fieldValue), done)
		})

	case methodGetMessages:
		messages, err := await(ctx, func(done func([]contract.StoredMessage, error)) {
			s.transport.GetMessages(channel, decodeFilter(req), done)
		})
		return map[string]any{fieldMessages: encodeMessages(messages)}, err

	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

// listen streams the deliveries of one socket until the pane goes away.
// The first message tells the pane that the socket is listened to.
// The socket is closed on the backend when the stream ends.
func (s *Server) listen(req *structpb.Struct, stream grpc.ServerStream) error {
	socket := domain.SocketID(str(req, fieldSocket))
	ctx := stream.Context()
	deliveries := make(chan contract.Delivery, s.streamBuffer)

	err := awaitErr(ctx, func(done func(error)) {
		s.transport.Listen(socket, func(d contract.Delivery) {
			select {
			case deliveries <- d:
			case <-ctx.Done():
			}
		}, done)
	})
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	defer s.transport.CloseSocket(socket)
	ready, err := structpb.NewStruct(map[string]any{fieldReady: true})
	if err != nil {
		return err
	}
	if err := stream.SendMsg(ready); err != nil {
		return err
	}
	s.log.Info("Remote pane listening", "socket", socket)

	for {
		select {
		case <-ctx.Done():
			s.log.Warn(fmt.Sprintf("Remote pane disconnected from socket %s", socket))
			return nil
		case d := <-deliveries:
			msg, err := encodeDelivery(d)
			if err != nil {
				s.log.Error("Cannot encode delivery", "socket", socket, "error", err)
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				s.log.Error("failed to push delivery to stream",
					"socket", socket,
					"channel", d.Channel,
					"error", err)
				return err
			}
		}
	}
}

// await waits for the completion of an asynchronous transport call.
func await[T any](ctx context.Context, start func(done func(T, error))) (T, error) {
	type result struct {
		value T
		err   error
	}
	results := make(chan result, 1)
	start(func(value T, err error) { results <- result{value: value, err: err} })
	select {
	case r := <-results:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func awaitErr(ctx context.Context, start func(done func(error))) error {
	_, err := await(ctx, func(done func(struct{}, error)) {
		start(func(err error) { done(struct{}{}, err) })
	})
	return err
}
