package fiber

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"go.uber.org/zap"
)

// Server exposes an rpc.Handler over HTTP.
type Server struct {
	Handler rpc.Handler
	// Token validates API keys. When nil every request is accepted.
	Token  *TokenService
	Logger *zap.Logger
}

func (s *Server) BindTo(parent fiber.Router) {
	router := parent.Group("/rpc")
	if s.Token != nil {
		router.Use(TokenMiddleware(s.Token))
	}
	router.Post("/:op", s.call)
}

func (s *Server) call(c *fiber.Ctx) error {
	op := c.Params("op")
	// The request body is only valid for the duration of the handler.
	params := append([]byte(nil), c.Body()...)
	if len(params) == 0 {
		params = []byte("null")
	}
	res, err := s.Handler.Serve(c.UserContext(), op, params)
	if err != nil {
		return s.error(c, op, err)
	}
	if res == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(res)
}

func (s *Server) error(c *fiber.Ctx, op string, err error) error {
	var rerr *rpc.Error
	switch {
	case errors.Is(err, rpc.ErrUnknownOp):
		c.Status(fiber.StatusNotFound)
	case errors.As(err, &rerr):
		c.Status(fiber.StatusBadRequest)
	default:
		if s.Logger != nil {
			s.Logger.Error("rpc handler failed", zap.String("op", op), zap.Error(err))
		}
		c.Status(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"error": err.Error()})
}

// TokenMiddleware rejects requests that do not carry a valid API key.
func TokenMiddleware(svc *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tk, err := parseToken(c)
		if err != nil {
			c.Status(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{"error": err.Error()})
		}
		if _, err := svc.Validate(tk); err != nil {
			c.Status(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{"error": err.Error()})
		}
		return c.Next()
	}
}

const (
	headerTokenPrefix             = "Bearer "
	invalidAuthorizationHeaderMsg = `
	invalid authorization header. Format should be

		'Authorization: Bearer <Token>'
	`
)

func parseToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) == 0 {
		return "", errors.New("missing api key")
	}
	if !strings.HasPrefix(authHeader, headerTokenPrefix) {
		return "", errors.New(invalidAuthorizationHeaderMsg)
	}
	return strings.TrimPrefix(authHeader, headerTokenPrefix), nil
}
