package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paired/config"
	"paired/internal/database"
	"paired/internal/models"
	"paired/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router   *gin.Engine
	locRepo  *repository.LocationRepository
	userRepo *repository.UserRepository
	db       *gorm.DB
}

// newTestEnv wires the handlers over an in-memory DB with auth replaced by a
// stub that pins the caller to user 1.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserLocation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	features := database.Features{HomeAnchor: true, LastSeen: true}
	userRepo := repository.NewUserRepository(db, features, nil)
	locRepo := repository.NewLocationRepository(db, features, nil)

	partnerID := uint(2)
	if err := db.Create(&models.User{ID: 1, Email: "a@example.com", PartnerID: &partnerID}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	selfID := uint(1)
	if err := db.Create(&models.User{ID: 2, Email: "b@example.com", PartnerID: &selfID}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	presCfg := &config.PresenceConfig{OnlineThreshold: 30 * time.Second}
	locationHandler := NewLocationHandler(locRepo, userRepo, nil)
	presenceHandler := NewPresenceHandler(userRepo, presCfg, nil)
	distanceHandler := NewDistanceHandler(locRepo, userRepo)

	r := gin.New()
	asUser1 := func(c *gin.Context) { c.Set("user_id", uint(1)); c.Next() }
	api := r.Group("/api/v1", asUser1)
	api.PUT("/me/location", locationHandler.UpdateLocation)
	api.PUT("/me/location/home", locationHandler.SetHome)
	api.GET("/me/location", locationHandler.GetMyLocation)
	api.GET("/partner/location", locationHandler.GetPartnerLocation)
	api.POST("/presence/heartbeat", presenceHandler.Heartbeat)
	api.GET("/partner/presence", presenceHandler.GetPartnerPresence)
	api.GET("/distance", distanceHandler.GetDistance)

	return &testEnv{router: r, locRepo: locRepo, userRepo: userRepo, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var resp map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func TestUpdateThenGetLocation(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPut, "/api/v1/me/location",
		map[string]interface{}{"latitude": -6.2088, "longitude": 106.8456})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", w.Code, w.Body.String())
	}
	w, resp := env.do(t, http.MethodGet, "/api/v1/me/location", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	if resp["latitude"].(float64) != -6.2088 {
		t.Fatalf("latitude = %v", resp["latitude"])
	}
}

func TestUpdateLocationRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPut, "/api/v1/me/location",
		map[string]interface{}{"latitude": 91.0, "longitude": 0.0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestSetHomeBeforeCurrentLocationConflicts(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPut, "/api/v1/me/location/home",
		map[string]interface{}{"latitude": 1.0, "longitude": 1.0})
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
}

func TestDistanceFlow(t *testing.T) {
	env := newTestEnv(t)

	// Nothing known yet: null distance, not zero.
	w, resp := env.do(t, http.MethodGet, "/api/v1/distance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if resp["distance_km"] != nil {
		t.Fatalf("distance_km = %v, want null", resp["distance_km"])
	}
	if resp["self_home_km"] != nil {
		t.Fatalf("self_home_km = %v, want null with no anchor", resp["self_home_km"])
	}

	if _, err := env.locRepo.UpsertCurrent(1, -6.2088, 106.8456, nil); err != nil {
		t.Fatalf("seed self: %v", err)
	}
	if _, err := env.locRepo.UpsertCurrent(2, -6.9175, 107.6191, nil); err != nil {
		t.Fatalf("seed partner: %v", err)
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/distance", nil)
	km, ok := resp["distance_km"].(float64)
	if !ok {
		t.Fatalf("distance_km = %v, want number", resp["distance_km"])
	}
	if km < 100 || km > 140 {
		t.Fatalf("distance_km = %v, want Jakarta-Bandung range", km)
	}
}

func TestHeartbeatThenPartnerPresence(t *testing.T) {
	env := newTestEnv(t)

	// No partner heartbeat yet.
	w, resp := env.do(t, http.MethodGet, "/api/v1/partner/presence", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if resp["online"].(bool) {
		t.Fatal("partner must read offline before any heartbeat")
	}

	// Partner (user 2) beats directly through the repo.
	if err := env.userRepo.TouchLastSeen(2); err != nil {
		t.Fatalf("touch: %v", err)
	}
	_, resp = env.do(t, http.MethodGet, "/api/v1/partner/presence", nil)
	if !resp["online"].(bool) {
		t.Fatal("partner must read online after a fresh heartbeat")
	}
	if resp["status_text"] != "Online • Active now" {
		t.Fatalf("status_text = %v", resp["status_text"])
	}
}
