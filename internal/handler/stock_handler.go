package handler

import (
	"errors"
	"net/http"

	"warehouse/internal/middleware"
	"warehouse/internal/repository"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	ledgerService service.LedgerService
	moveService   service.MoveService
	lookup        service.ProductLookup
}

func NewStockHandler(ledgerService service.LedgerService, moveService service.MoveService, lookup service.ProductLookup) *StockHandler {
	return &StockHandler{ledgerService: ledgerService, moveService: moveService, lookup: lookup}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stock := router.Group("/api")
	{
		stock.GET("/stock", middleware.RequireRole("admin", "manager", "staff"), h.ListStock)
		stock.POST("/stock", middleware.RequireRole("admin", "manager", "staff"), h.AddStock)
		stock.GET("/stock/summary", middleware.RequireRole("admin", "manager", "staff"), h.GetSummary)
		stock.GET("/stock/barcode/:barcode", middleware.RequireRole("admin", "manager", "staff"), h.FindByBarcode)
		stock.GET("/stock/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetEntry)
		stock.PUT("/stock/:id", middleware.RequireRole("admin", "manager"), h.EditStock)
		stock.DELETE("/stock/:id", middleware.RequireRole("admin", "manager"), h.DeleteEntry)
		stock.POST("/stock/:id/deduct", middleware.RequireRole("admin", "manager", "staff"), h.DeductStock)
		stock.POST("/stock/:id/move", middleware.RequireRole("admin", "manager", "staff"), h.MoveStock)
		stock.GET("/lookup/:barcode", middleware.RequireRole("admin", "manager", "staff"), h.LookupBarcode)
		stock.GET("/locations", middleware.RequireRole("admin", "manager", "staff"), h.ListLocations)
		stock.PUT("/locations/:code", middleware.RequireRole("admin", "manager"), h.SetLocationAvailability)
	}
}

// ListStock handles retrieving paginated stock entries
// @Summary      List stock
// @Description  Retrieves a paginated list of stock entries with optional filters
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Param        search    query     string  false  "Filter by name prefix"
// @Param        barcode   query     string  false  "Filter by barcode"
// @Param        location  query     string  false  "Filter by location code"
// @Param        status    query     string  false  "Filter by status (pending/active)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/stock [get]
func (h *StockHandler) ListStock(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.StockFilter{
		NamePrefix:   c.Query("search"),
		Barcode:      c.Query("barcode"),
		LocationCode: c.Query("location"),
		Status:       c.Query("status"),
	}

	entries, total, err := h.ledgerService.ListStock(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve stock: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// AddStock records inbound stock as a new ledger row
// @Summary      Add stock
// @Description  Creates a new stock entry; entries with the same identity are kept as separate rows and merged at read time
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AddStockRequest  true  "Add Stock Payload"
// @Success      201      {object}  response.Response{data=service.StockEntryResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock [post]
func (h *StockHandler) AddStock(c *gin.Context) {
	var req service.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.AddStock(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// GetSummary returns the merged per-identity stock view
// @Summary      Stock summary
// @Description  Aggregates ledger rows by (name, asin, barcode, location, shelf): quantities sum, last_updated is the most recent
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.StockSummaryRow}
// @Failure      500  {object}  response.Response
// @Router       /api/stock/summary [get]
func (h *StockHandler) GetSummary(c *gin.Context) {
	summary, err := h.ledgerService.LocationSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build summary: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// FindByBarcode lists every ledger row carrying a barcode
// @Summary      Find stock by barcode
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        barcode  path      string  true  "Barcode"
// @Success      200      {object}  response.Response{data=[]service.StockEntryResponse}
// @Failure      500      {object}  response.Response
// @Router       /api/stock/barcode/{barcode} [get]
func (h *StockHandler) FindByBarcode(c *gin.Context) {
	entries, err := h.ledgerService.FindByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to look up barcode: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetEntry retrieves a single stock entry by ID
// @Summary      Get stock entry
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Stock Entry ID"
// @Success      200  {object}  response.Response{data=service.StockEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// EditStock patches stock entry fields with an itemized audit diff
// @Summary      Edit stock entry
// @Description  Patches the provided fields. Quantity decreases apply immediately; increases are parked as a pending adjustment awaiting confirmation
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Stock Entry ID"
// @Param        payload  body      service.EditStockRequest  true  "Edit Stock Payload"
// @Success      200      {object}  response.Response{data=service.EditStockResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/stock/{id} [put]
func (h *StockHandler) EditStock(c *gin.Context) {
	var req service.EditStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.ledgerService.EditFields(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteEntry removes a stock entry outright
// @Summary      Delete stock entry
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Stock Entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/stock/{id} [delete]
func (h *StockHandler) DeleteEntry(c *gin.Context) {
	if err := h.ledgerService.DeleteEntry(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Stock entry deleted successfully"))
}

type deductRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason"`
}

// DeductStock removes quantity from a stock entry immediately
// @Summary      Deduct stock
// @Description  Deducts quantity from one ledger row. Fails if the row holds fewer units than requested
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Stock Entry ID"
// @Param        payload  body      deductRequest   true  "Deduct Payload"
// @Success      200      {object}  response.Response{data=service.StockEntryResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock/{id}/deduct [post]
func (h *StockHandler) DeductStock(c *gin.Context) {
	var req deductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.Deduct(c.Request.Context(), actorFromContext(c), c.Param("id"), req.Quantity, req.Reason)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// MoveStock relocates units to another location/shelf
// @Summary      Move stock
// @Description  Moves quantity to a destination shelf. A full-quantity move relocates the row itself; a partial move merges into a matching destination row or creates one
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Source Stock Entry ID"
// @Param        payload  body      service.MoveStockRequest  true  "Move Stock Payload"
// @Success      200      {object}  response.Response{data=service.MoveStockResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock/{id}/move [post]
func (h *StockHandler) MoveStock(c *gin.Context) {
	var req service.MoveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.moveService.MoveStock(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// LookupBarcode queries the external product catalog
// @Summary      Look up product info
// @Description  Fetches name/unit/asin for a scanned barcode from the product catalog. A 404 means the operator should type the fields by hand
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        barcode  path      string  true  "Barcode"
// @Success      200      {object}  response.Response{data=service.ProductInfo}
// @Failure      404      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /api/lookup/{barcode} [get]
func (h *StockHandler) LookupBarcode(c *gin.Context) {
	info, err := h.lookup.Lookup(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		if errors.Is(err, service.ErrLookupNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, info))
}

// ListLocations lists location availability metadata
// @Summary      List locations
// @Tags         locations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Location}
// @Failure      500  {object}  response.Response
// @Router       /api/locations [get]
func (h *StockHandler) ListLocations(c *gin.Context) {
	locations, err := h.moveService.ListLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to list locations: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, locations))
}

// SetLocationAvailability toggles whether a location accepts new stock
// @Summary      Toggle location availability
// @Description  Marks a location available or unavailable. Unavailable locations reject inbound stock and move destinations; existing stock is untouched
// @Tags         locations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        code     path      string                      true  "Location Code"
// @Param        payload  body      service.SetLocationRequest  true  "Availability Payload"
// @Success      200      {object}  response.Response{data=model.Location}
// @Failure      400      {object}  response.Response
// @Router       /api/locations/{code} [put]
func (h *StockHandler) SetLocationAvailability(c *gin.Context) {
	var req service.SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	loc, err := h.moveService.SetLocationAvailability(c.Request.Context(), actorFromContext(c), c.Param("code"), *req.IsAvailable)
	if err != nil {
		c.JSON(errorStatus(err), response.Error(errorStatus(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loc))
}
