package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"resume-ats/internal/scores"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/server/middleware"
)

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		Env:              "test",
		CORSAllowOrigin:  []string{"http://localhost:5173"},
		MaxUploadBytes:   1 << 20,
		CacheTTL:         time.Hour,
		BatchConcurrency: 2,
	}
}

func TestBuildFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := Build(testConfig())
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.DB != nil || app.Redis != nil || app.ScoresCache != nil {
		t.Fatalf("expected no external dependencies, got %+v", app)
	}
	if _, ok := app.ScoresRepo.(*scores.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.ScoresRepo)
	}

	body, _ := json.Marshal(gin.H{
		"resumeText":     "Go developer with 4 years of experience building Docker services",
		"jobDescription": "Backend engineer. Go and Docker required.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ats/score", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.GuestIDHeader, "bootstrap")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"

	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildWiresRedisCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.ScoresCache == nil {
		t.Fatalf("expected redis cache to be wired")
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var rep struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !rep.OK || rep.Checks["redis"] != "ok" {
		t.Fatalf("unexpected health: %+v", rep)
	}
}

func TestBuildSkipsUnreachableRedisInDev(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	if app.ScoresCache != nil {
		t.Fatalf("expected cache disabled")
	}
}
