package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/api/transport"
	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	badgeUC "github.com/fastygo/teamboard/usecase/badge"
	pointsUC "github.com/fastygo/teamboard/usecase/points"
)

// PointsHandler serves the ledger and badge endpoints.
type PointsHandler struct {
	baseHandler
	points *pointsUC.UseCase
	ledger *pointsUC.Ledger
	badges *badgeUC.Evaluator
}

func NewPointsHandler(points *pointsUC.UseCase, ledger *pointsUC.Ledger, badges *badgeUC.Evaluator, adapter *httpcontext.Adapter, logger *zap.Logger) *PointsHandler {
	return &PointsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		points:      points,
		ledger:      ledger,
		badges:      badges,
	}
}

type pointsHistory struct {
	UserID  int64                   `json:"user_id"`
	Total   int                     `json:"total"`
	Entries []domain.PointsLogEntry `json:"entries"`
}

// @Summary Manually adjust a user's points
// @Tags points
// @Router /api/v1/users/{id}/points [post]
func (h *PointsHandler) Adjust(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	userID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.PointsAdjustRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.points.Adjust(stdCtx, actor, pointsUC.AdjustInput{
		UserID: userID,
		Amount: req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPartial(ctx, http.StatusCreated, result, result.Warnings)
}

// @Summary Points history of a user
// @Tags points
// @Router /api/v1/users/{id}/points [get]
func (h *PointsHandler) History(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	userID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	total, err := h.ledger.Total(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	entries, err := h.ledger.History(stdCtx, userID, queryInt(ctx, "limit", 100))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pointsHistory{UserID: userID, Total: total, Entries: entries})
}

// @Summary Badges earned by a user
// @Tags badges
// @Router /api/v1/users/{id}/badges [get]
func (h *PointsHandler) Earned(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	userID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	earned, err := h.badges.Earned(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, earned)
}

// @Summary Badge catalog
// @Tags badges
// @Router /api/v1/badges [get]
func (h *PointsHandler) Catalog(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	badges, err := h.badges.Catalog(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, badges)
}
