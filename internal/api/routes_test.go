package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/ws"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:        "development",
		JWTSecret:          "secret",
		FrontendURL:        "http://localhost:5173",
		TickRate:           60,
		GameStartDelaySecs: 60,
		DefaultCourse:      "classic",
		MaxSessions:        10,
		SessionTimeoutMin:  60,
	}
	courses := game.NewCourseRegistry()
	courses.Register(game.StandardCourse())
	m := game.NewManager(nil, nil, cfg, courses)
	t.Cleanup(m.Shutdown)
	hub := ws.NewHub(m)
	m.SetBroadcaster(hub)

	r := gin.New()
	SetupRoutes(r, m, hub, cfg)
	return r
}

func do(r *gin.Engine, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func createGame(t *testing.T, r *gin.Engine, body map[string]any) (token, host string) {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/game", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	info := out["game"].(map[string]any)
	return info["token"].(string), out["host_token"].(string)
}

func TestStaticEndpoints(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/health", http.StatusOK},
		{"/api/v1/config", http.StatusOK},
		{"/api/v1/courses", http.StatusOK},
		{"/api/v1/courses/classic", http.StatusOK},
		{"/api/v1/courses/nowhere", http.StatusNotFound},
		{"/api/v1/courses/classic/leaderboard", http.StatusOK},
		{"/api/v1/courses/nowhere/leaderboard", http.StatusNotFound},
		{"/api/v1/game/missing", http.StatusNotFound},
		{"/api/v1/game/missing/scoreboard", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := do(r, http.MethodGet, tt.path, nil, ""); w.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.status)
		}
	}

	courses := decode(t, do(r, http.MethodGet, "/api/v1/courses", nil, ""))
	list := courses["courses"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["par"].(float64) != 8 {
		t.Errorf("courses = %v", list)
	}
}

func TestCreateGameValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"no players", map[string]any{"players_count": 0}, http.StatusBadRequest},
		{"too many players", map[string]any{"players_count": 9}, http.StatusBadRequest},
		{"unknown course", map[string]any{"players_count": 2, "course": "nowhere"}, http.StatusNotFound},
		{"unknown mode", map[string]any{"players_count": 2, "mode": "cloud"}, http.StatusBadRequest},
		{"ok", map[string]any{"players_count": 2}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, http.MethodPost, "/api/v1/game", tt.body, ""); w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestGameLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token, host := createGame(t, r, map[string]any{"players_count": 3, "passcode": "fore"})

	state := decode(t, do(r, http.MethodGet, "/api/v1/game/"+token, nil, ""))
	info := state["info"].(map[string]any)
	if info["status"] != string(game.StatusWaiting) || info["has_passcode"] != true {
		t.Errorf("info = %v", info)
	}

	if w := do(r, http.MethodPost, "/api/v1/game/"+token+"/join", map[string]any{"passcode": "par"}, ""); w.Code != http.StatusForbidden {
		t.Errorf("wrong passcode status = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/v1/game/"+token+"/join", map[string]any{"passcode": "fore"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d", w.Code)
	}
	spectator := decode(t, w)["spectator_token"].(string)

	qr := do(r, http.MethodGet, "/api/v1/game/"+token+"/qr", nil, "")
	if qr.Code != http.StatusOK || qr.Header().Get("Content-Type") != "image/png" {
		t.Errorf("qr = %d %s", qr.Code, qr.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(qr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("qr body is not a PNG")
	}

	board := decode(t, do(r, http.MethodGet, "/api/v1/game/"+token+"/scoreboard", nil, ""))
	if pars := board["pars"].([]any); len(pars) != 3 {
		t.Errorf("pars = %v", pars)
	}

	if w := do(r, http.MethodDelete, "/api/v1/game/"+token, nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("delete without token = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/game/"+token, nil, spectator); w.Code != http.StatusForbidden {
		t.Errorf("delete as spectator = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/game/"+token, nil, host); w.Code != http.StatusOK {
		t.Errorf("delete as host = %d", w.Code)
	}
}
