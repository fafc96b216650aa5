package middleware

import (
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/teamboard/internal/metrics"
)

// Instrument records request count and latency under the route pattern,
// not the raw path, to keep label cardinality bounded.
func Instrument(route string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		method := string(ctx.Method())
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
	}
}
