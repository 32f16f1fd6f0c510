package handlers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"curbside/services/scheduling"
)

// availabilityCacheTTL keeps repeated identical availability queries off the
// slot store. Short on purpose: capacity changes under it.
const availabilityCacheTTL = 15 * time.Second

// CollectionHandler exposes the special-collection core over HTTP.
type CollectionHandler struct {
	Svc    scheduling.SchedulingService
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewCollectionHandler constructs a CollectionHandler.
func NewCollectionHandler(svc scheduling.SchedulingService, cache *redis.Client, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{Svc: svc, Cache: cache, Logger: logger}
}

// CheckAvailability handles POST /api/collection/availability.
func (h *CollectionHandler) CheckAvailability(c *gin.Context) {
	var input scheduling.AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	cacheKey := availabilityCacheKey(input)
	if h.Cache != nil {
		if cached, err := h.Cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var res scheduling.AvailabilityResult
			if json.Unmarshal([]byte(cached), &res) == nil {
				c.JSON(http.StatusOK, res)
				return
			}
		}
	}

	res, err := h.Svc.CheckAvailability(c.Request.Context(), input)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if h.Cache != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := h.Cache.Set(context.Background(), cacheKey, data, availabilityCacheTTL).Err(); err != nil {
				h.Logger.Warn("Failed to cache availability response", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, res)
}

// ConfirmBooking handles POST /api/collection/confirm.
func (h *CollectionHandler) ConfirmBooking(c *gin.Context) {
	var input scheduling.ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	// Identity comes from the validated token, never the payload.
	input.ResidentID = c.GetString("residentID")

	res, err := h.Svc.ConfirmBooking(c.Request.Context(), input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// SyncCheckout handles POST /api/collection/checkout/sync. Both the return
// redirect and the provider's out-of-band notification land here.
func (h *CollectionHandler) SyncCheckout(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.SyncCheckoutSession(c.Request.Context(), input.SessionID, c.GetString("residentID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func availabilityCacheKey(in scheduling.AvailabilityInput) string {
	raw := fmt.Sprintf("%s|%d|%v|%s", in.ItemPolicyID, in.Quantity, in.WeightPerItem, in.PreferredDate.Format("2006-01-02"))
	sum := sha1.Sum([]byte(raw))
	return "availability:" + hex.EncodeToString(sum[:])
}

// renderError maps the service error taxonomy onto HTTP statuses so clients
// can pick the right recovery action.
func (h *CollectionHandler) renderError(c *gin.Context, err error) {
	code := scheduling.CodeOf(err)
	switch code {
	case scheduling.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
	case scheduling.CodePolicyDisallowed:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": code})
	case scheduling.CodeSlotUnavailable:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": code})
	case scheduling.CodeSessionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": code})
	case scheduling.CodeAccessDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": code})
	case scheduling.CodePaymentProvider:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": code})
	default:
		h.Logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
