package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	requestRepo "curbside/database/repository/request"
)

// RequestHandler serves residents their own collection requests.
type RequestHandler struct {
	Repo   requestRepo.RequestRepository
	Logger *zap.Logger
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(repo requestRepo.RequestRepository, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{Repo: repo, Logger: logger}
}

// GetByID handles GET /api/collection/requests/:id. Owner-scoped: a request
// belonging to another resident is reported as not found.
func (h *RequestHandler) GetByID(c *gin.Context) {
	req, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		h.Logger.Error("Request lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if req.ResidentID != c.GetString("residentID") {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusOK, req)
}

// List handles GET /api/collection/requests.
func (h *RequestHandler) List(c *gin.Context) {
	reqs, err := h.Repo.ListByResident(c.Request.Context(), c.GetString("residentID"))
	if err != nil {
		h.Logger.Error("Request list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}
