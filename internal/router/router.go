package router

import (
	"time"

	"paired/config"
	"paired/internal/database"
	"paired/internal/handler"
	"paired/internal/middleware"
	"paired/internal/realtime"
	"paired/internal/repository"
	"paired/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, features database.Features, bus realtime.Bus) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	userRepo := repository.NewUserRepository(db, features, bus)
	locRepo := repository.NewLocationRepository(db, features, bus)
	pairHub := ws.NewPairHub()

	locationHandler := handler.NewLocationHandler(locRepo, userRepo, pairHub)
	presenceHandler := handler.NewPresenceHandler(userRepo, &cfg.Presence, pairHub)
	distanceHandler := handler.NewDistanceHandler(locRepo, userRepo)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ws/pair", ws.UpgradePairWS(&cfg.JWT, pairHub))

	api := r.Group("/api/v1", middleware.AuthRequired(&cfg.JWT))
	{
		api.GET("/me/location", locationHandler.GetMyLocation)
		api.PUT("/me/location", locationHandler.UpdateLocation)
		api.PUT("/me/location/home", locationHandler.SetHome)
		api.GET("/partner/location", locationHandler.GetPartnerLocation)

		api.POST("/presence/heartbeat", presenceHandler.Heartbeat)
		api.GET("/partner/presence", presenceHandler.GetPartnerPresence)

		api.GET("/distance", distanceHandler.GetDistance)
	}
	return r
}
