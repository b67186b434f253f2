// Package fiber carries remote operations over HTTP: every operation is a POST
// to /rpc/<op> with the params as a JSON body.
package fiber

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"go.uber.org/zap"
)

type ClientConfig struct {
	// URL is the base address of the backend, e.g. http://localhost:3000.
	URL string
	// APIKey is sent as a bearer token with every call. Optional.
	APIKey string
	// Timeout bounds every call. Zero leaves calls bounded only by the context
	// deadline.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client implements rpc.Service over HTTP.
type Client struct{ cfg ClientConfig }

var _ rpc.Service = (*Client)(nil)

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("[rpc] - url is required")
	}
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIKey != "" {
		if err := checkUnverified(cfg.APIKey); err != nil {
			return nil, err
		}
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) Call(ctx context.Context, op string, params interface{}, result interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.cfg.APIKey != "" {
		// Keys expire while a long-lived client is running.
		if err := checkUnverified(c.cfg.APIKey); err != nil {
			return err
		}
	}
	a := fiber.Post(c.cfg.URL + "/rpc/" + op).JSON(params)
	if timeout, ok := c.timeout(ctx); ok {
		a.Timeout(timeout)
	}
	if c.cfg.APIKey != "" {
		a.Set(fiber.HeaderAuthorization, headerTokenPrefix+c.cfg.APIKey)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		var err error
		for _, e := range errs {
			err = errors.CombineErrors(err, e)
		}
		c.cfg.Logger.Debug("rpc transport failure", zap.String("op", op), zap.Error(err))
		return errors.Wrapf(err, "[rpc] - calling %s", op)
	}
	if code >= fiber.StatusBadRequest {
		return decodeError(op, code, body)
	}
	if result == nil || len(body) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, result), "[rpc] - decoding %s result", op)
}

func (c *Client) timeout(ctx context.Context) (time.Duration, bool) {
	t := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); t == 0 || until < t {
			t = until
		}
	}
	return t, t > 0
}

func decodeError(op string, code int, body []byte) error {
	var res struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.Error == "" {
		return &rpc.Error{Op: op, Message: statusMessage(code)}
	}
	return &rpc.Error{Op: op, Message: res.Error}
}

func statusMessage(code int) string {
	if msg := utils.StatusMessage(code); msg != "" {
		return msg
	}
	return "request failed"
}
