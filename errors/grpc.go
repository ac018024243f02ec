package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcCodes = []struct {
	err  error
	code codes.Code
}{
	{ErrInvalidName, codes.InvalidArgument},
	{ErrFilterParse, codes.InvalidArgument},
	{ErrMalformedMessage, codes.InvalidArgument},
	{ErrUnknownChannel, codes.NotFound},
	{ErrUnknownSocket, codes.NotFound},
	{ErrNotBound, codes.FailedPrecondition},
	{ErrNotJoined, codes.FailedPrecondition},
	{ErrAlreadyListening, codes.AlreadyExists},
	{ErrHubClosed, codes.Unavailable},
	{ErrHubUnavailable, codes.Unavailable},
}

// MapToGRPCError turns a domain error into a status carrying its message.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	for _, known := range grpcCodes {
		if stderrors.Is(err, known.err) {
			return status.Error(known.code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPCError restores the domain error a status was built from, so that
// errors.Is keeps working on the client side.
func FromGRPCError(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	for _, known := range grpcCodes {
		if st.Code() == known.code && strings.HasPrefix(st.Message(), known.err.Error()) {
			return fmt.Errorf("%w%s", known.err, strings.TrimPrefix(st.Message(), known.err.Error()))
		}
	}
	return err
}
