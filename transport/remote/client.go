package remote

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/errors"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Transport talks to a hub served by Server. Completions run on their own
// goroutines, the same way the in-process hub reports them.
// Sends and parts go through one outbox so they reach the hub in order.
type Transport struct {
	log     *slog.Logger
	conn    grpc.ClientConnInterface
	ctx     context.Context
	timeout time.Duration
	outbox  *outbox
}

// NewTransport binds calls and delivery streams to ctx.
// The outbox is drained until ctx is canceled.
func NewTransport(ctx context.Context, log *slog.Logger, conn grpc.ClientConnInterface, timeout time.Duration) *Transport {
	t := &Transport{log: log, conn: conn, ctx: ctx, timeout: timeout, outbox: newOutbox()}
	go t.outbox.run(ctx)
	return t
}

func (t *Transport) CreateSocket(done func(domain.SocketID, error)) {
	go func() {
		reply, err := t.invoke(methodCreateSocket, nil)
		done(domain.SocketID(str(reply, fieldSocket)), err)
	}()
}

func (t *Transport) CreateChannel(name string, done func(domain.ChannelID, error)) {
	go func() {
		reply, err := t.invoke(methodCreateChannel, map[string]any{fieldName: name})
		done(domain.ChannelID(str(reply, fieldChannel)), err)
	}()
}

func (t *Transport) Bind(socket domain.SocketID, channel domain.ChannelID, done func(error)) {
	go func() {
		_, err := t.invoke(methodBind, map[string]any{fieldSocket: string(socket), fieldChannel: string(channel)})
		done(err)
	}()
}

func (t *Transport) Join(channel domain.ChannelID, done func(error)) {
	go func() {
		_, err := t.invoke(methodJoin, map[string]any{fieldChannel: string(channel)})
		done(err)
	}()
}

func (t *Transport) Part(channel domain.ChannelID, done func(error)) {
	t.outbox.push(func() {
		_, err := t.invoke(methodPart, map[string]any{fieldChannel: string(channel)})
		done(err)
	})
}

func (t *Transport) Send(channel domain.ChannelID, payload []byte, done func(error)) {
	t.outbox.push(func() {
		_, err := t.invoke(methodSend, map[string]any{
			fieldChannel: string(channel),
			fieldPayload: encodeBytes(payload),
		})
		done(err)
	})
}

// Listen opens the delivery stream of socket. done runs once the server
// accepted it, or after the call timeout. Deliveries then reach handler in
// order, from a single goroutine.
func (t *Transport) Listen(socket domain.SocketID, handler func(contract.Delivery), done func(error)) {
	go func() {
		stream, cancel, err := t.openStream(socket)
		if err != nil {
			done(err)
			return
		}
		defer cancel()
		done(nil)
		t.receive(socket, stream, handler)
	}()
}

func (t *Transport) openStream(socket domain.SocketID) (grpc.ClientStream, context.CancelFunc, error) {
	req, err := structpb.NewStruct(map[string]any{fieldSocket: string(socket)})
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(t.ctx)
	timer := time.AfterFunc(t.timeout, cancel)

	stream, err := t.conn.NewStream(ctx, &hubServiceDesc.Streams[0], fullMethod(methodListen))
	if err == nil {
		err = stream.SendMsg(req)
	}
	if err == nil {
		err = stream.CloseSend()
	}
	if err == nil {
		err = stream.RecvMsg(new(structpb.Struct))
	}
	expired := !timer.Stop()
	if err == nil && !expired {
		return stream, cancel, nil
	}
	cancel()
	if expired {
		return nil, nil, fmt.Errorf("%w: no listen ack for socket %s within %v", errors.ErrHubUnavailable, socket, t.timeout)
	}
	return nil, nil, errors.FromGRPCError(err)
}

func (t *Transport) receive(socket domain.SocketID, stream grpc.ClientStream, handler func(contract.Delivery)) {
	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if stderrors.Is(err, io.EOF) || t.ctx.Err() != nil {
				t.log.Debug("Delivery stream closed", "socket", socket)
				return
			}
			t.log.Error("Delivery stream broken", "socket", socket, "error", err)
			return
		}
		d, err := decodeDelivery(msg)
		if err != nil {
			t.log.Warn("Dropping undecodable delivery", "socket", socket, "error", err)
			continue
		}
		handler(d)
	}
}

func (t *Transport) GetValue(channel domain.ChannelID, key string, done func(string, error)) {
	go func() {
		reply, err := t.invoke(methodGetValue, map[string]any{fieldChannel: string(channel), fieldKey: key})
		done(str(reply, fieldValue), err)
	}()
}

func (t *Transport) SetValue(channel domain.ChannelID, key, value string, done func(error)) {
	go func() {
		_, err := t.invoke(methodSetValue, map[string]any{
			fieldChannel: string(channel),
			fieldKey:     key,
			fieldValue:   value,
		})
		done(err)
	}()
}

func (t *Transport) GetMessages(channel domain.ChannelID, filter search.Filter, done func([]contract.StoredMessage, error)) {
	go func() {
		reply, err := t.invoke(methodGetMessages, encodeFilter(map[string]any{fieldChannel: string(channel)}, filter))
		if err != nil {
			done(nil, err)
			return
		}
		done(decodeMessages(reply))
	}()
}

// outbox runs jobs one at a time, in the order they were pushed, without
// ever blocking the pusher.
type outbox struct {
	mu     sync.Mutex
	jobs   []func()
	notify chan struct{}
}

func newOutbox() *outbox {
	return &outbox{notify: make(chan struct{}, 1)}
}

func (o *outbox) push(job func()) {
	o.mu.Lock()
	o.jobs = append(o.jobs, job)
	o.mu.Unlock()
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

func (o *outbox) pop() (func(), bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.jobs) == 0 {
		return nil, false
	}
	job := o.jobs[0]
	o.jobs = o.jobs[1:]
	return job, true
}

// run drains the outbox until ctx is canceled. Jobs left at that point
// still run, their calls fail right away with the canceled context.
func (o *outbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for job, ok := o.pop(); ok; job, ok = o.pop() {
				job()
			}
			return
		case <-o.notify:
			for job, ok := o.pop(); ok; job, ok = o.pop() {
				job()
			}
		}
	}
}

func (t *Transport) invoke(method string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	reply := new(structpb.Struct)
	if err := t.conn.Invoke(ctx, fullMethod(method), req, reply); err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return reply, nil
}

// Dial connects to a hub and waits until the connection is ready.
func Dial(ctx context.Context, log *slog.Logger, address string, readyTimeout time.Duration, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  100 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   3 * time.Second,
			},
		}),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)
			log.Debug(fmt.Sprintf("GRPC %s [%s] in %v", method, status.Code(err), time.Since(start)))
			return err
		}),
	}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return conn, nil
		}
		if !conn.WaitForStateChange(dialCtx, state) {
			_ = conn.Close()
			return nil, fmt.Errorf("%w: %s", errors.ErrHubUnavailable, address)
		}
	}
}
