// Package remote serves a transport over gRPC and implements the transport
// interface on top of such a server, so several panes can share one hub.
// Requests and replies are protobuf Structs, described by a hand written
// service descriptor.
package remote

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "chatsession.v1.Hub"

const (
	methodCreateSocket  = "CreateSocket"
	methodCreateChannel = "CreateChannel"
	methodBind          = "Bind"
	methodJoin          = "Join"
	methodPart          = "Part"
	methodSend          = "Send"
	methodListen        = "Listen"
	methodGetValue      = "GetValue"
	methodSetValue      = "SetValue"
	methodGetMessages   = "GetMessages"
)

const (
	fieldSocket         = "socket"
	fieldChannel        = "channel"
	fieldName           = "name"
	fieldKey            = "key"
	fieldValue          = "value"
	fieldPayload        = "payload"
	fieldSender         = "sender"
	fieldAt             = "at"
	fieldOp             = "op"
	fieldReady          = "ready"
	fieldMessages       = "messages"
	fieldFilterArg      = "filter_arg"
	fieldFilterType     = "filter_type"
	fieldFilterOperator = "filter_operator"
	fieldFilterKey      = "filter_key"
)

const (
	opMessage  = "message"
	opSetValue = "set_value"
)

// hubService is what a registered server provides.
type hubService interface {
	call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error)
	listen(req *structpb.Struct, stream grpc.ServerStream) error
}

var hubServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*hubService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodCreateSocket, Handler: unaryHandler(methodCreateSocket)},
		{MethodName: methodCreateChannel, Handler: unaryHandler(methodCreateChannel)},
		{MethodName: methodBind, Handler: unaryHandler(methodBind)},
		{MethodName: methodJoin, Handler: unaryHandler(methodJoin)},
		{MethodName: methodPart, Handler: unaryHandler(methodPart)},
		{MethodName: methodSend, Handler: unaryHandler(methodSend)},
		{MethodName: methodGetValue, Handler: unaryHandler(methodGetValue)},
		{MethodName: methodSetValue, Handler: unaryHandler(methodSetValue)},
		{MethodName: methodGetMessages, Handler: unaryHandler(methodGetMessages)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: methodListen, Handler: listenHandler, ServerStreams: true},
	},
	Metadata: "chatsession/v1/hub",
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

func unaryHandler(method string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(hubService).call(ctx, method, req.(*structpb.Struct))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, handler)
	}
}

func listenHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(hubService).listen(in, stream)
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func bytesField(s *structpb.Struct, key string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(str(s, key))
}

func intField(s *structpb.Struct, key string) (int64, error) {
	return strconv.ParseInt(str(s, key), 10, 64)
}

func encodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func encodeInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func encodeFilter(fields map[string]any, filter search.Filter) map[string]any {
	fields[fieldFilterArg] = filter.Arg
	fields[fieldFilterType] = string(filter.Type)
	fields[fieldFilterOperator] = filter.Operator
	fields[fieldFilterKey] = filter.Key
	return fields
}

func decodeFilter(s *structpb.Struct) search.Filter {
	return search.Filter{
		Arg:      str(s, fieldFilterArg),
		Type:     search.FilterType(str(s, fieldFilterType)),
		Operator: str(s, fieldFilterOperator),
		Key:      str(s, fieldFilterKey),
	}
}

func encodeDelivery(d contract.Delivery) (*structpb.Struct, error) {
	op := opMessage
	if d.Op == contract.OpSetValue {
		op = opSetValue
	}
	return structpb.NewStruct(map[string]any{
		fieldOp:      op,
		fieldChannel: string(d.Channel),
		fieldSender:  string(d.Sender),
		fieldKey:     d.Key,
		fieldPayload: encodeBytes(d.Payload),
		fieldAt:      encodeInt(d.Timestamp),
	})
}

func decodeDelivery(s *structpb.Struct) (contract.Delivery, error) {
	d := contract.Delivery{
		Channel: domain.ChannelID(str(s, fieldChannel)),
		Sender:  domain.SocketID(str(s, fieldSender)),
		Key:     str(s, fieldKey),
	}
	switch op := str(s, fieldOp); op {
	case opMessage:
		d.Op = contract.OpMessage
	case opSetValue:
		d.Op = contract.OpSetValue
	default:
		return contract.Delivery{}, fmt.Errorf("unknown delivery op %q", op)
	}
	payload, err := bytesField(s, fieldPayload)
	if err != nil {
		return contract.Delivery{}, fmt.Errorf("delivery payload: %w", err)
	}
	at, err := intField(s, fieldAt)
	if err != nil {
		return contract.Delivery{}, fmt.Errorf("delivery timestamp: %w", err)
	}
	d.Payload = payload
	d.Timestamp = at
	return d, nil
}

func encodeMessages(messages []contract.StoredMessage) []any {
	encoded := make([]any, 0, len(messages))
	for _, m := range messages {
		encoded = append(encoded, map[string]any{
			fieldPayload: encodeBytes(m.Payload),
			fieldAt:      encodeInt(m.Timestamp),
		})
	}
	return encoded
}

func decodeMessages(s *structpb.Struct) ([]contract.StoredMessage, error) {
	values := s.GetFields()[fieldMessages].GetListValue().GetValues()
	messages := make([]contract.StoredMessage, 0, len(values))
	for _, value := range values {
		item := value.GetStructValue()
		payload, err := bytesField(item, fieldPayload)
		if err != nil {
			return nil, fmt.Errorf("stored payload: %w", err)
		}
		at, err := intField(item, fieldAt)
		if err != nil {
			return nil, fmt.Errorf("stored timestamp: %w", err)
		}
		messages = append(messages, contract.StoredMessage{Payload: payload, Timestamp: at})
	}
	return messages, nil
}
