package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/config"
)

func devConfig() config.Config {
	return config.Config{
		Env:                "dev",
		CORSAllowOrigin:    []string{"http://localhost:5173"},
		LLMTimeout:         time.Second,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		GuestRetention:     time.Hour,
		GuestSweepInterval: time.Hour,
		MaxUploadBytes:     1 << 20,
	}
}

func TestBuildDevFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), devConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["storage"] != "memory" || body["provider"] != "unconfigured" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestBuildRoutesGuestStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), devConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/guest-status", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("guest-status = %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("history without token = %d, want 401", w.Code)
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "prod-secret"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}
