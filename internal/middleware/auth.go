package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/api/transport"
	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
)

// ActorResolver turns a bearer token into the actor it belongs to.
type ActorResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

// JWTAuth rejects requests without a valid bearer token bound to a live
// session and stores the resolved actor on the request.
func JWTAuth(resolver ActorResolver, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := ExtractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			actor, err := resolver.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("token resolution failed", zap.Error(err))
					writeEnvelope(ctx, http.StatusServiceUnavailable,
						transport.NewError(string(domain.ErrCodePersistence), "authentication unavailable", nil))
					return
				}
				logger.Debug("rejected bearer token", zap.Error(err))
				unauthorized(ctx, "invalid or expired token")
				return
			}

			httpcontext.SetActor(ctx, actor)
			next(ctx)
		}
	}
}

// ExtractToken returns the bearer token from the Authorization header.
func ExtractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="teamboard"`)
	writeEnvelope(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
}

func writeEnvelope(ctx *fasthttp.RequestCtx, status int, env transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(env.String())
}
