package handler

import (
	"errors"
	"net/http"

	"paired/internal/middleware"
	"paired/internal/repository"
	"paired/internal/ws"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locRepo  *repository.LocationRepository
	userRepo *repository.UserRepository
	pairHub  *ws.PairHub
}

func NewLocationHandler(locRepo *repository.LocationRepository, userRepo *repository.UserRepository, pairHub *ws.PairHub) *LocationHandler {
	return &LocationHandler{locRepo: locRepo, userRepo: userRepo, pairHub: pairHub}
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Address   *string  `json:"address"`
}

// UpdateLocation writes the caller's live position (manual refresh path; the
// auto-refresh loop funnels through the same upsert).
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc, err := h.locRepo.UpsertCurrent(userID, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if partner, err := h.userRepo.PartnerOf(userID); err == nil && h.pairHub != nil {
		h.pairHub.PushLocation(partner.ID, userID, loc.Latitude, loc.Longitude)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "last_updated_at": loc.LastUpdatedAt})
}

// SetHome writes only the caller's home anchor; the live position and its
// timestamp are untouched. Requires an existing location record.
func (h *LocationHandler) SetHome(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc, err := h.locRepo.SetHome(userID, *req.Latitude, *req.Longitude, req.Address)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "set your current location first"})
		return
	case errors.Is(err, repository.ErrHomeUnsupported):
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "home_supported": false})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"home_latitude":  loc.HomeLatitude,
		"home_longitude": loc.HomeLongitude,
		"home_address":   loc.HomeAddress,
	})
}

func (h *LocationHandler) GetMyLocation(c *gin.Context) {
	h.respondLocation(c, middleware.GetUserID(c))
}

// GetPartnerLocation reads the other half's record. Read-only: this session
// never writes the partner's row.
func (h *LocationHandler) GetPartnerLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	partner, err := h.userRepo.PartnerOf(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no partner linked"})
		return
	}
	h.respondLocation(c, partner.ID)
}

func (h *LocationHandler) respondLocation(c *gin.Context, userID uint) {
	loc, err := h.locRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"latitude": nil, "longitude": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"latitude":        loc.Latitude,
		"longitude":       loc.Longitude,
		"address":         loc.Address,
		"last_updated_at": loc.LastUpdatedAt,
		"home_latitude":   loc.HomeLatitude,
		"home_longitude":  loc.HomeLongitude,
		"home_address":    loc.HomeAddress,
	})
}
