package handler

import (
	"net/http"

	"warehouse/internal/middleware"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService service.JobService
}

func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.POST("/sessions", middleware.RequireRole("admin", "manager", "staff"), h.StartSession)
		api.GET("/sessions/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetSession)
		api.POST("/sessions/:id/items", middleware.RequireRole("admin", "manager", "staff"), h.AddSessionItem)
		api.PUT("/sessions/:id/items", middleware.RequireRole("admin", "manager", "staff"), h.UpdateSessionItem)
		api.DELETE("/sessions/:id/items", middleware.RequireRole("admin", "manager", "staff"), h.RemoveSessionItem)
		api.POST("/sessions/:id/finish", middleware.RequireRole("admin", "manager", "staff"), h.FinishPicking)
		api.DELETE("/sessions/:id", middleware.RequireRole("admin", "manager", "staff"), h.AbandonSession)

		api.GET("/jobs", middleware.RequireRole("admin", "manager", "staff"), h.ListJobs)
		api.GET("/jobs/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetJob)
		api.PUT("/jobs/:id/items/verify", middleware.RequireRole("admin", "manager", "staff"), h.VerifyItem)
		api.PUT("/jobs/:id/items", middleware.RequireRole("admin", "manager", "staff"), h.UpdateItem)
		api.DELETE("/jobs/:id/items", middleware.RequireRole("admin", "manager", "staff"), h.RemoveItem)
		api.POST("/jobs/:id/complete", middleware.RequireRole("admin", "manager", "staff"), h.CompletePacking)
		api.DELETE("/jobs/:id", middleware.RequireRole("admin", "manager"), h.DeleteJob)
	}
}

// StartSession opens a new in-memory pick session
// @Summary      Start pick session
// @Description  Opens a picking session for the operator. Items accumulate in memory; nothing touches the ledger until finish
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Success      201  {object}  response.Response{data=service.SessionResponse}
// @Router       /api/sessions [post]
func (h *JobHandler) StartSession(c *gin.Context) {
	sess := h.jobService.StartSession(actorFromContext(c))
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sess))
}

// GetSession returns the current state of a pick session
// @Summary      Get pick session
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=service.SessionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/sessions/{id} [get]
func (h *JobHandler) GetSession(c *gin.Context) {
	sess, err := h.jobService.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// AddSessionItem records a scanned item and its deferred deduction
// @Summary      Add session item
// @Description  Resolves the barcode against stock at the given shelf and records the pick intent. Stock is not deducted yet
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Session ID"
// @Param        payload  body      service.AddSessionItemRequest   true  "Add Item Payload"
// @Success      200      {object}  response.Response{data=service.SessionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/sessions/{id}/items [post]
func (h *JobHandler) AddSessionItem(c *gin.Context) {
	var req service.AddSessionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.jobService.AddSessionItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// UpdateSessionItem changes a session item's quantity before finalization
// @Summary      Update session item
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Session ID"
// @Param        payload  body      service.UpdateJobItemRequest  true  "Update Item Payload"
// @Success      200      {object}  response.Response{data=service.SessionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/sessions/{id}/items [put]
func (h *JobHandler) UpdateSessionItem(c *gin.Context) {
	var req service.UpdateJobItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.jobService.UpdateSessionItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// RemoveSessionItem drops an item from the session
// @Summary      Remove session item
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Session ID"
// @Param        payload  body      service.RemoveJobItemRequest  true  "Remove Item Payload"
// @Success      200      {object}  response.Response{data=service.SessionResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/sessions/{id}/items [delete]
func (h *JobHandler) RemoveSessionItem(c *gin.Context) {
	var req service.RemoveJobItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.jobService.RemoveSessionItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// FinishPicking persists the session as an awaiting_pack job
// @Summary      Finish picking
// @Description  Creates the job with its items and commits every accumulated deduction against the ledger in one transaction. Any shortfall rolls back everything and keeps the session alive
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      201  {object}  response.Response{data=service.JobResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/sessions/{id}/finish [post]
func (h *JobHandler) FinishPicking(c *gin.Context) {
	job, err := h.jobService.FinishPicking(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, job))
}

// AbandonSession discards a pick session without touching the ledger
// @Summary      Abandon pick session
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/sessions/{id} [delete]
func (h *JobHandler) AbandonSession(c *gin.Context) {
	if err := h.jobService.AbandonSession(c.Param("id")); err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Session abandoned"))
}

// ListJobs returns paginated jobs, optionally filtered by status
// @Summary      List jobs
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "Filter by status (picking/awaiting_pack/completed)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	p := pagination.Parse(c)
	jobs, total, err := h.jobService.ListJobs(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve jobs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetJob retrieves one job with its items
// @Summary      Get job
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=service.JobResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

type verifyItemRequest struct {
	Barcode  string `json:"barcode" binding:"required"`
	Verified *bool  `json:"verified" binding:"required"`
}

// VerifyItem toggles an item's packing verification flag
// @Summary      Verify job item
// @Description  Marks one item verified or unverified while the job awaits packing. Only the flag is written, so concurrent toggles on different items never clash
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Job ID"
// @Param        payload  body      verifyItemRequest  true  "Verify Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/jobs/{id}/items/verify [put]
func (h *JobHandler) VerifyItem(c *gin.Context) {
	var req verifyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.jobService.SetItemVerified(c.Request.Context(), actorFromContext(c), c.Param("id"), req.Barcode, *req.Verified)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item verification updated"))
}

// UpdateItem edits a job item during packing
// @Summary      Update job item
// @Description  Overwrites an item's barcode/quantity while the job awaits packing. The quantity difference is applied against the ledger so the committed deduction matches the final item list
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Job ID"
// @Param        payload  body      service.UpdateJobItemRequest  true  "Update Item Payload"
// @Success      200      {object}  response.Response{data=service.JobResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/jobs/{id}/items [put]
func (h *JobHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateJobItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.UpdateItem(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// RemoveItem deletes a job item and restores its stock
// @Summary      Remove job item
// @Description  Removes an item while the job awaits packing and restores its deducted quantity to the ledger
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Job ID"
// @Param        payload  body      service.RemoveJobItemRequest  true  "Remove Item Payload"
// @Success      200      {object}  response.Response{data=service.JobResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/jobs/{id}/items [delete]
func (h *JobHandler) RemoveItem(c *gin.Context) {
	var req service.RemoveJobItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.RemoveItem(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// CompletePacking transitions an awaiting_pack job to completed
// @Summary      Complete packing
// @Description  Finalizes the job. Item verification is advisory; unverified items do not block completion
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=service.JobResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id}/complete [post]
func (h *JobHandler) CompletePacking(c *gin.Context) {
	job, err := h.jobService.CompletePacking(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// DeleteJob removes a job from any state
// @Summary      Delete job
// @Description  Deletes the job and its items. Ledger deductions already committed are never reversed
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.jobService.DeleteJob(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Job deleted successfully"))
}
