package handler

import (
	"net/http"
	"time"

	"paired/config"
	"paired/internal/middleware"
	"paired/internal/repository"
	"paired/internal/ws"
	"paired/pkg/presence"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	userRepo *repository.UserRepository
	cfg      *config.PresenceConfig
	pairHub  *ws.PairHub
}

func NewPresenceHandler(userRepo *repository.UserRepository, cfg *config.PresenceConfig, pairHub *ws.PairHub) *PresenceHandler {
	return &PresenceHandler{userRepo: userRepo, cfg: cfg, pairHub: pairHub}
}

// Heartbeat records "I am alive now" for the caller. Device clients hit this
// on the heartbeat cadence; server-owned sessions use HeartbeatPublisher.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.userRepo.TouchLastSeen(userID); err != nil {
		// Best-effort: the worst outcome is appearing offline later.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if partner, err := h.userRepo.PartnerOf(userID); err == nil && h.pairHub != nil {
		h.pairHub.PushPresence(partner.ID, userID, true, "Online • Active now")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPartnerPresence derives the partner's verdict on demand; the stored
// is_online flag is never consulted.
func (h *PresenceHandler) GetPartnerPresence(c *gin.Context) {
	userID := middleware.GetUserID(c)
	partner, err := h.userRepo.PartnerOf(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no partner linked"})
		return
	}
	seen, err := h.userRepo.LastSeen(partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "presence unavailable"})
		return
	}
	state := presence.Evaluate(seen, time.Now(), h.cfg.OnlineThreshold)
	c.JSON(http.StatusOK, state)
}
