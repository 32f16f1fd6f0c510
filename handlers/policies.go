package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"curbside/services/policy"
)

// PolicyHandler lists bookable item policies for the booking form.
type PolicyHandler struct {
	Policies policy.Provider
}

// NewPolicyHandler constructs a PolicyHandler.
func NewPolicyHandler(policies policy.Provider) *PolicyHandler {
	return &PolicyHandler{Policies: policies}
}

// List handles GET /api/policies. Disallowed policies are included so the
// client can explain why an item cannot be booked.
func (h *PolicyHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"policies": h.Policies.List()})
}
