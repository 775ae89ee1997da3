package handler

import (
	"net/http"

	"warehouse/internal/middleware"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/activity-logs")
	group.Use(middleware.RequireRole("admin", "manager")) // Protect history logs
	{
		group.GET("", h.GetActivityLogs)
	}
}

// GetActivityLogs retrieves paginated audit entries with operators pre-loaded
// @Summary      Get activity logs
// @Description  Retrieves the audit trail of stock and job mutations, newest first
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        action  query     string  false  "Filter by action (e.g. ADD_STOCK, FINISH_PICKING)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/activity-logs [get]
func (h *AuditHandler) GetActivityLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetActivityLogs(c.Request.Context(), c.Query("action"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve activity logs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}
