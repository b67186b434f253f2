// Package rpc is the contract with the remote backend. Every remote read and
// write goes through a Service by operation name; the backend itself is opaque.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Service calls a named remote operation. params is encoded as JSON; the
// response is decoded into result unless result is nil.
type Service interface {
	Call(ctx context.Context, op string, params interface{}, result interface{}) error
}

// Error is a failure reported by the backend. Message is meant for display.
type Error struct {
	Op      string
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrUnknownOp is returned by a Handler for an operation it does not serve.
var ErrUnknownOp = errors.New("[rpc] - unknown operation")

// Handler serves remote operations. It is the server-side counterpart of
// Service.
type Handler interface {
	Serve(ctx context.Context, op string, params json.RawMessage) (interface{}, error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, op string, params json.RawMessage) (interface{}, error)

func (f HandlerFunc) Serve(ctx context.Context, op string, params json.RawMessage) (interface{}, error) {
	return f(ctx, op, params)
}

// Local returns a Service that calls h in process. Params and results still
// travel as JSON, so h sees exactly what it would over the network.
func Local(h Handler) Service { return local{h: h} }

type local struct{ h Handler }

func (l local) Call(ctx context.Context, op string, params interface{}, result interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return errors.Wrapf(err, "[rpc] - encoding %s params", op)
	}
	res, err := l.h.Serve(ctx, op, raw)
	if err != nil {
		return AsError(op, err)
	}
	if result == nil || res == nil {
		return nil
	}
	out, err := json.Marshal(res)
	if err != nil {
		return errors.Wrapf(err, "[rpc] - encoding %s result", op)
	}
	return errors.Wrapf(json.Unmarshal(out, result), "[rpc] - decoding %s result", op)
}

// AsError converts err into an *Error for op, keeping an existing *Error.
func AsError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{Op: op, Message: err.Error()}
}
