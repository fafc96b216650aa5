package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/repository"
	activityUC "github.com/fastygo/teamboard/usecase/activity"
	statsUC "github.com/fastygo/teamboard/usecase/stats"
)

// StatsHandler serves the read-side views: dashboard, ranking and the
// activity feed.
type StatsHandler struct {
	baseHandler
	stats    *statsUC.UseCase
	activity *activityUC.Recorder
}

func NewStatsHandler(stats *statsUC.UseCase, activity *activityUC.Recorder, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		stats:       stats,
		activity:    activity,
	}
}

// @Summary Dashboard counters
// @Tags stats
// @Router /api/v1/stats/dashboard [get]
func (h *StatsHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	userID, ok := queryID(ctx, "user_id")
	if !ok {
		h.respondInvalid(ctx, "invalid user_id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.stats.DashboardStats(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Points ranking
// @Tags stats
// @Router /api/v1/ranking [get]
func (h *StatsHandler) Ranking(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	ranking, err := h.stats.Ranking(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ranking)
}

// @Summary Activity feed
// @Tags activity
// @Router /api/v1/activity [get]
func (h *StatsHandler) Activity(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	userID, ok := queryID(ctx, "user_id")
	if !ok {
		h.respondInvalid(ctx, "invalid user_id")
		return
	}

	filter := repository.ActivityFilter{Limit: queryInt(ctx, "limit", activityUC.DefaultLimit)}
	if userID != nil {
		filter.UserID = *userID
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.activity.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}
