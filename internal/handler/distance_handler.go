package handler

import (
	"net/http"

	"paired/internal/middleware"
	"paired/internal/models"
	"paired/internal/repository"
	"paired/pkg/location"

	"github.com/gin-gonic/gin"
)

// DistanceHandler reports the live distance between the pair plus each
// side's distance to their home anchor. Metrics are null, never zero, while
// an input is unknown.
type DistanceHandler struct {
	locRepo  *repository.LocationRepository
	userRepo *repository.UserRepository
}

func NewDistanceHandler(locRepo *repository.LocationRepository, userRepo *repository.UserRepository) *DistanceHandler {
	return &DistanceHandler{locRepo: locRepo, userRepo: userRepo}
}

func (h *DistanceHandler) GetDistance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	partner, err := h.userRepo.PartnerOf(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no partner linked"})
		return
	}
	selfLoc, _ := h.locRepo.GetByUserID(userID)
	partnerLoc, _ := h.locRepo.GetByUserID(partner.ID)

	resp := gin.H{
		"distance_km":          nil,
		"self_home_km":         roundedHome(selfLoc),
		"partner_home_km":      roundedHome(partnerLoc),
		"self_has_location":    selfLoc != nil,
		"partner_has_location": partnerLoc != nil,
	}
	switch {
	case selfLoc == nil:
		resp["message"] = "Update your location to see distance"
	case partnerLoc == nil:
		resp["message"] = "Partner location not yet available"
	default:
		km := location.HaversineKm(selfLoc.Latitude, selfLoc.Longitude,
			partnerLoc.Latitude, partnerLoc.Longitude)
		resp["distance_km"] = location.RoundKm(km)
		resp["partner_location_at"] = partnerLoc.LastUpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

func roundedHome(loc *models.UserLocation) *float64 {
	if loc == nil || !loc.HasHome() {
		return nil
	}
	km := location.RoundKm(location.HaversineKm(loc.Latitude, loc.Longitude,
		*loc.HomeLatitude, *loc.HomeLongitude))
	return &km
}
