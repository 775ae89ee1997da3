package handler

import (
	"net/http"

	"warehouse/internal/middleware"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdjustmentHandler struct {
	adjustmentService service.AdjustmentService
}

func NewAdjustmentHandler(adjustmentService service.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

func (h *AdjustmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/adjustments", middleware.RequireRole("admin", "manager"), h.ListAdjustments)
		api.POST("/adjustments/:id/confirm", middleware.RequireRole("admin", "manager"), h.ConfirmAdjustment)
		api.POST("/adjustments/:id/reject", middleware.RequireRole("admin", "manager"), h.RejectAdjustment)
	}
}

// ListAdjustments returns paginated quantity adjustments
// @Summary      List stock adjustments
// @Tags         adjustments
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "Filter by status (PENDING/CONFIRMED/REJECTED)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/adjustments [get]
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
	p := pagination.Parse(c)
	adjustments, total, err := h.adjustmentService.List(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve adjustments: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"adjustments": adjustments,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
	}))
}

// ConfirmAdjustment applies a parked quantity increase
// @Summary      Confirm adjustment
// @Description  Applies the requested quantity to the stock entry. The confirmed count wins even if the row changed since the request
// @Tags         adjustments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  response.Response{data=model.StockAdjustment}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/adjustments/{id}/confirm [post]
func (h *AdjustmentHandler) ConfirmAdjustment(c *gin.Context) {
	adj, err := h.adjustmentService.Confirm(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, adj))
}

// RejectAdjustment discards a parked quantity increase
// @Summary      Reject adjustment
// @Tags         adjustments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  response.Response{data=model.StockAdjustment}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/adjustments/{id}/reject [post]
func (h *AdjustmentHandler) RejectAdjustment(c *gin.Context) {
	adj, err := h.adjustmentService.Reject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, adj))
}
