package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"paired/config"
	"paired/internal/database"
	"paired/internal/geo"
	"paired/internal/realtime"
	"paired/internal/repository"
	"paired/internal/service"

	"github.com/go-redis/redis/v8"
)

// agent runs one pair session on behalf of a device: heartbeat, geolocation
// auto-refresh and the realtime-fed presence/location cache.
func main() {
	cfg := config.Load()
	selfID := mustUserID("SELF_USER_ID")
	partnerID := mustUserID("PARTNER_USER_ID")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	features := database.ProbeFeatures(db)

	var bus realtime.Bus
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		bus = realtime.NewRedisBus(rdb)
	} else {
		bus = realtime.NewMemoryBus()
	}

	userRepo := repository.NewUserRepository(db, features, bus)
	locRepo := repository.NewLocationRepository(db, features, bus)

	var poller *geo.Poller
	if cfg.Geo.AgentURL != "" {
		provider := geo.NewAgentProvider(cfg.Geo.AgentURL)
		poller = geo.NewPoller(provider, locRepo, cfg.Geo.FixTimeout, cfg.Geo.RefreshInterval)
	} else {
		log.Printf("[agent] GEO_AGENT_URL not set, auto-refresh disabled")
	}

	heartbeat := service.NewHeartbeatPublisher(userRepo, cfg.Presence.HeartbeatInterval)
	coord := service.NewCoordinator(selfID, partnerID, locRepo, userRepo, heartbeat, poller, bus,
		service.CoordinatorConfig{
			PollInterval:    cfg.Presence.PollInterval,
			OnlineThreshold: cfg.Presence.OnlineThreshold,
		})
	coord.OnUpdate = func() {
		state := coord.PartnerPresence()
		if km := coord.Distance(); km != nil {
			log.Printf("[agent] partner %s, %.2f km apart", state.StatusText, *km)
		} else {
			log.Printf("[agent] partner %s, distance unknown", state.StatusText)
		}
	}

	if err := coord.Start(context.Background()); err != nil {
		log.Fatalf("start session: %v", err)
	}
	log.Printf("[agent] session up for user %d (partner %d), state %s", selfID, partnerID, coord.State())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	coord.Stop()
	log.Println("[agent] session stopped")
}

func mustUserID(key string) uint {
	v := os.Getenv(key)
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		log.Fatalf("%s must be a positive user id, got %q", key, v)
	}
	return uint(n)
}
