package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
)

type resolverFunc func(ctx context.Context, token string) (*domain.Actor, error)

func (f resolverFunc) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	return f(ctx, token)
}

func TestExtractToken(t *testing.T) {
	cases := []struct{ header, want string }{
		{"", ""},
		{"Bearer abc.def", "abc.def"},
		{"bearer   xyz   ", "xyz"},
		{"raw-token", "raw-token"},
		{"Bearer", "Bearer"},
	}
	for _, tc := range cases {
		ctx := &fasthttp.RequestCtx{}
		if tc.header != "" {
			ctx.Request.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, ExtractToken(ctx), tc.header)
	}
}

func TestJWTAuth(t *testing.T) {
	resolver := resolverFunc(func(_ context.Context, token string) (*domain.Actor, error) {
		switch token {
		case "good":
			return &domain.Actor{UserID: 3, Role: domain.RoleUser}, nil
		case "down":
			return nil, domain.Persistence("load session", errors.New("redis: connection refused"))
		default:
			return nil, domain.ErrUnauthorized
		}
	})

	var seen *domain.Actor
	handler := JWTAuth(resolver, nil, nil)(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.ActorFrom(ctx)
		ctx.SetStatusCode(http.StatusOK)
	})

	run := func(header string) *fasthttp.RequestCtx {
		ctx := &fasthttp.RequestCtx{}
		if header != "" {
			ctx.Request.Header.Set("Authorization", header)
		}
		handler(ctx)
		return ctx
	}

	ctx := run("Bearer good")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	if assert.NotNil(t, seen) {
		assert.Equal(t, int64(3), seen.UserID)
	}

	ctx = run("")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.NotEmpty(t, ctx.Response.Header.Peek("WWW-Authenticate"))

	ctx = run("Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "UNAUTHORIZED")

	ctx = run("Bearer down")
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "PERSISTENCE")
}
