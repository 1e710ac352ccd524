package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/backend/internal/application/service"
	"github.com/openbooks/backend/internal/domain/lifecycle"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	documents *service.DocumentService
	exchange  *service.ExchangeService
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(documents *service.DocumentService, exchange *service.ExchangeService, logger Logger) *Handlers {
	return &Handlers{
		documents: documents,
		exchange:  exchange,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse represents a document status in API responses
type StatusResponse struct {
	SchemaName string `json:"schema_name"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Label      string `json:"label"`
}

// ExchangeRateResponse represents a resolved exchange rate
type ExchangeRateResponse struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
	Date  string `json:"date,omitempty"`
	Rate  string `json:"rate"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStatus handles GET /api/documents/:schema/:name/status
func (h *Handlers) GetStatus(c *gin.Context) {
	schema := c.Param("schema")
	name := c.Param("name")

	status, err := h.documents.Status(c.Request.Context(), schema, name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: StatusResponse{
			SchemaName: schema,
			Name:       name,
			Status:     status.String(),
			Label:      status.DisplayText(),
		},
	})
}

// ListActions handles GET /api/documents/:schema/:name/actions
func (h *Handlers) ListActions(c *gin.Context) {
	schema := c.Param("schema")
	name := c.Param("name")

	actions, err := h.documents.Actions(c.Request.Context(), schema, name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: actions})
}

// RunAction handles POST /api/documents/:schema/:name/actions/:label.
// Executing a currently disabled action is a no-op; the response is still
// 204 because silent inapplicability is the contract.
func (h *Handlers) RunAction(c *gin.Context) {
	schema := c.Param("schema")
	name := c.Param("name")
	label := c.Param("label")

	err := h.documents.RunAction(c.Request.Context(), schema, name, label)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetExchangeRate handles GET /api/exchange-rate?base=&quote=&date=
func (h *Handlers) GetExchangeRate(c *gin.Context) {
	base := c.Query("base")
	quote := c.Query("quote")
	date := c.Query("date")

	if base == "" || quote == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "base and quote query parameters are required",
		})
		return
	}

	rate := h.exchange.Resolve(c.Request.Context(), base, quote, date)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ExchangeRateResponse{
			Base:  base,
			Quote: quote,
			Date:  date,
			Rate:  rate.String(),
		},
	})
}

// respondError maps service errors to HTTP responses
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, lifecycle.ErrGuardFailed):
		status = http.StatusConflict
	case isNotFound(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}
