package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/ochello-backend/internal/model"
	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/benbeisheim/ochello-backend/internal/service"
	"github.com/benbeisheim/ochello-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, archive *storage.Archive) *fiber.App {
	t.Helper()
	gm := service.NewGameManager(service.ManagerConfig{
		EnPassant:           rules.EnPassantReference,
		MatchmakingInterval: time.Hour,
		Archive:             archive,
	}, zap.NewNop())
	t.Cleanup(gm.Close)
	gs := service.NewGameService(gm)

	app := fiber.New()
	RegisterRoutes(app, NewGameController(gs, zap.NewNop()), NewWebSocketController(gs, zap.NewNop()), nil, zap.NewNop())
	return app
}

func do(t *testing.T, app *fiber.App, method, path, playerID, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func createGame(t *testing.T, app *fiber.App, query string) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/game/create"+query, "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("create: status %d: %s", status, body)
	}
	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.GameID == "" {
		t.Fatalf("create: bad body %s: %v", body, err)
	}
	return created.GameID
}

func TestPlayerIDRequired(t *testing.T) {
	app := newTestApp(t, nil)

	if status, _ := do(t, app, http.MethodPost, "/api/game/create", "", ""); status != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
}

func TestSeatsSurviveLaterRequests(t *testing.T) {
	app := newTestApp(t, nil)
	gameID := createGame(t, app, "")

	joins := []struct {
		player string
		status int
		body   string
	}{
		{"alice", fiber.StatusOK, `"color":"white"`},
		{"bobby", fiber.StatusOK, `"color":"black"`},
		{"carol", fiber.StatusConflict, "game is full"},
	}
	for _, j := range joins {
		status, body := do(t, app, http.MethodPost, "/api/game/join/"+gameID, j.player, "")
		if status != j.status || !strings.Contains(string(body), j.body) {
			t.Errorf("join %s: %d %s", j.player, status, body)
		}
	}

	status, body := do(t, app, http.MethodGet, "/api/game/"+gameID, "carol", "")
	var state model.GameState
	if status != fiber.StatusOK || json.Unmarshal(body, &state) != nil {
		t.Fatalf("state: %d %s", status, body)
	}
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bobby" {
		t.Errorf("seats changed after later requests: %+v", state.Players)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/"+gameID+"/click", "carol", `{"row":6,"col":4}`); status != fiber.StatusForbidden {
		t.Errorf("outsider click: expected 403, got %d", status)
	}
}

func TestClickFlow(t *testing.T) {
	app := newTestApp(t, nil)
	gameID := createGame(t, app, "")

	for player, want := range map[string]rules.Color{"alice": rules.White, "bob": rules.Black} {
		status, body := do(t, app, http.MethodPost, "/api/game/join/"+gameID, player, "")
		if status != fiber.StatusOK || !strings.Contains(string(body), string(want)) {
			t.Fatalf("join %s: %d %s", player, status, body)
		}
	}

	status, body := do(t, app, http.MethodPost, "/api/game/"+gameID+"/click", "alice", `{"row":6,"col":4}`)
	if status != fiber.StatusOK {
		t.Fatalf("select: %d %s", status, body)
	}
	var res model.ClickResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode click result: %v", err)
	}
	if res.Outcome.Kind != rules.OutcomeSelected || len(res.State.LegalMoves) != 2 {
		t.Errorf("unexpected selection %+v", res.Outcome)
	}

	status, body = do(t, app, http.MethodPost, "/api/game/"+gameID+"/click", "alice", `{"row":4,"col":4}`)
	if status != fiber.StatusOK || !strings.Contains(string(body), `"moved"`) {
		t.Fatalf("move: %d %s", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/api/game/"+gameID+"/history", "bob", "")
	var history struct {
		History []string `json:"history"`
	}
	if status != fiber.StatusOK || json.Unmarshal(body, &history) != nil || len(history.History) != 1 {
		t.Errorf("history: %d %s", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/api/game/"+gameID, "carol", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"toMove":"black"`) {
		t.Errorf("state: %d %s", status, body)
	}
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t, nil)
	gameID := createGame(t, app, "")
	do(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice", "")

	tests := []struct {
		name   string
		method string
		path   string
		player string
		body   string
		status int
	}{
		{"unknown game", http.MethodGet, "/api/game/missing", "alice", "", fiber.StatusNotFound},
		{"waiting for opponent", http.MethodPost, "/api/game/" + gameID + "/click", "alice", `{"row":6,"col":4}`, fiber.StatusConflict},
		{"not in game", http.MethodPost, "/api/game/" + gameID + "/click", "mallory", `{"row":6,"col":4}`, fiber.StatusForbidden},
		{"out of bounds", http.MethodPost, "/api/game/" + gameID + "/click", "alice", `{"row":9,"col":0}`, fiber.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/game/" + gameID + "/click", "alice", `{"row":`, fiber.StatusBadRequest},
		{"archive disabled", http.MethodGet, "/api/archive/stats", "alice", "", fiber.StatusServiceUnavailable},
		{"websocket without upgrade", http.MethodGet, "/ws/game/" + gameID, "alice", "", fiber.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.method, tt.path, tt.player, tt.body)
			if status != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, status, body)
			}
		})
	}

	do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", "")
	status, _ := do(t, app, http.MethodPost, "/api/game/join/"+gameID, "carol", "")
	if status != fiber.StatusConflict {
		t.Errorf("joining a full game: expected 409, got %d", status)
	}
	status, _ = do(t, app, http.MethodPost, "/api/game/"+gameID+"/click", "bob", `{"row":1,"col":4}`)
	if status != fiber.StatusConflict {
		t.Errorf("clicking out of turn: expected 409, got %d", status)
	}
}

func TestMatchmakingQueue(t *testing.T) {
	app := newTestApp(t, nil)

	if status, _ := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusOK {
		t.Fatalf("join queue: %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusConflict {
		t.Errorf("second join: expected 409, got %d", status)
	}
	status, body := do(t, app, http.MethodPost, "/api/game/matchmaking/leave", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"removed":true`) {
		t.Errorf("leave queue: %d %s", status, body)
	}
}

func TestArchiveEndpoints(t *testing.T) {
	archive, err := storage.Open("")
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	if err := archive.RecordGame(storage.GameRecord{ID: "done", Winner: rules.Black, Plies: 7}); err != nil {
		t.Fatalf("seed archive: %v", err)
	}
	app := newTestApp(t, archive)

	status, body := do(t, app, http.MethodGet, "/api/archive/done", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"winner":"black"`) {
		t.Errorf("archived game: %d %s", status, body)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/archive/missing", "alice", ""); status != fiber.StatusNotFound {
		t.Errorf("missing record: expected 404, got %d", status)
	}

	status, body = do(t, app, http.MethodGet, "/api/archive/stats", "alice", "")
	var stats storage.Stats
	if status != fiber.StatusOK || json.Unmarshal(body, &stats) != nil || stats.BlackWins != 1 {
		t.Errorf("stats: %d %s", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/api/archive?limit=10", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"id":"done"`) {
		t.Errorf("list: %d %s", status, body)
	}
}
