package rpc

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server error messages. The controller keys its translations on these.
const (
	MsgInvalidCredentials = "incorrect login or password"
	MsgUserExists         = "user with this name is already registered"
	MsgTaskNotFound       = "there is no note with such id in system"
	MsgPersonNotFound     = "there is no person with such id in system"
)

var (
	ErrInvalidCredentials = status.Error(codes.Unauthenticated, MsgInvalidCredentials)
	ErrUserExists         = status.Error(codes.AlreadyExists, MsgUserExists)
	ErrTaskNotFound       = status.Error(codes.NotFound, MsgTaskNotFound)
	ErrPersonNotFound     = status.Error(codes.NotFound, MsgPersonNotFound)
)

// Error is the decoded form of a failed call.
type Error struct {
	Message string
	Code    codes.Code
	Details string
}

func (e Error) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", e.Code, e.Message)
}

// FromError decodes err. gRPC status errors keep their message, code and
// details; anything else is reported as codes.Unknown with its text.
func FromError(err error) Error {
	if err == nil {
		return Error{Code: codes.OK}
	}
	var e Error
	if errors.As(err, &e) {
		return e
	}
	st, ok := status.FromError(err)
	if !ok {
		return Error{Message: err.Error(), Code: codes.Unknown}
	}

	details := make([]string, 0, len(st.Details()))
	for _, d := range st.Details() {
		details = append(details, fmt.Sprint(d))
	}
	return Error{
		Message: st.Message(),
		Code:    st.Code(),
		Details: strings.Join(details, "; "),
	}
}
