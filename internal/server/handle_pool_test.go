package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/7LayerLabs/SundaySquares/internal/database"
	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

func setupServer(t *testing.T) (*chi.Mux, *DocStore) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewDocStore(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	if err := store.SeedDemo(ctx); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("7777"), bcrypt.MinCost)
	if err := store.SeedOwner(ctx, hash); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	addRoutes(r, logger, store, db, nil, newHistorySet(0), "")
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authenticate(t *testing.T, r http.Handler, code, credential string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/pools/"+code+"/auth", "", AuthRequest{Code: credential})
	if w.Code != http.StatusOK {
		t.Fatalf("auth: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatal("auth: expected a session token")
	}
	return resp.Token
}

func TestCreatePool(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "Office Pool", AdminPin: "9876"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp CreatePoolResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.PoolCode) != squares.CodeLength {
		t.Errorf("pool code = %q", resp.PoolCode)
	}
	if resp.Title != "Office Pool" {
		t.Errorf("title = %q", resp.Title)
	}

	// The new pool is reachable under its code.
	w = doJSON(t, r, http.MethodGet, "/api/pools/"+resp.PoolCode+"/state", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", w.Code)
	}
}

func TestCreatePoolRejectsBadPin(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "x", AdminPin: "12"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAuthRoles(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/auth", "", AuthRequest{Code: "1234"})
	if w.Code != http.StatusOK {
		t.Fatalf("pin auth: got %d: %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Role != "admin" {
		t.Errorf("pin auth role = %q, want admin", resp.Role)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/auth", "", AuthRequest{Code: "demo01"})
	json.NewDecoder(w.Body).Decode(&resp)
	if w.Code != http.StatusOK || resp.Role != "player" {
		t.Errorf("code auth = %d role %q, want 200 player", w.Code, resp.Role)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/auth", "", AuthRequest{Code: "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad auth: got %d, want 401", w.Code)
	}
}

func TestPoolNotFound(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/pools/ZZZZZZ/state", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStateRedactsPin(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/state", "", nil)
	var state StateResponse
	json.NewDecoder(w.Body).Decode(&state)
	if state.Pool.AdminPin != "" {
		t.Error("admin pin leaked to anonymous caller")
	}
	if state.Pool.PoolCode != "DEMO01" {
		t.Errorf("pool code = %q", state.Pool.PoolCode)
	}

	admin := authenticate(t, r, "DEMO01", "1234")
	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/state", admin, nil)
	json.NewDecoder(w.Body).Decode(&state)
	if state.Pool.AdminPin != "1234" {
		t.Errorf("admin state pin = %q, want 1234", state.Pool.AdminPin)
	}
	if state.Role != "admin" {
		t.Errorf("role = %q", state.Role)
	}
}

func TestClaimSquare(t *testing.T) {
	r, _ := setupServer(t)
	player := authenticate(t, r, "DEMO01", "DEMO01")

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", player,
		ClaimRequest{Row: 5, Col: 7, Owner: "pat", PaymentMethod: "venmo"})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ClaimResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Square.Owner != "PAT" {
		t.Errorf("owner = %q, want PAT", resp.Square.Owner)
	}
	if resp.Stats.TotalClaimed != 5 {
		t.Errorf("claimed = %d, want 5 (4 seeded + 1)", resp.Stats.TotalClaimed)
	}
}

func TestClaimRequiresSession(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", "",
		ClaimRequest{Row: 0, Col: 1, Owner: "x", PaymentMethod: "cash"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestClaimValidation(t *testing.T) {
	r, _ := setupServer(t)
	player := authenticate(t, r, "DEMO01", "DEMO01")

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", player,
		ClaimRequest{Row: 0, Col: 1, Owner: "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing method: got %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", player,
		ClaimRequest{Row: 12, Col: 1, Owner: "x", PaymentMethod: "cash"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad cell: got %d, want 400", w.Code)
	}
}

func TestVerificationAndDelete(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")
	player := authenticate(t, r, "DEMO01", "DEMO01")

	// Player cannot verify.
	w := doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/squares/2-2/verification", player,
		VerificationRequest{IsPaid: true})
	if w.Code != http.StatusForbidden {
		t.Fatalf("player verify: got %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/squares/2-2/verification", admin,
		VerificationRequest{IsPaid: true})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: got %d: %s", w.Code, w.Body.String())
	}
	var resp ClaimResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Stats.TotalPaid != 2 {
		t.Errorf("paid = %d, want 2 (1 seeded + 1)", resp.Stats.TotalPaid)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/pools/DEMO01/squares/2-2", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/pools/DEMO01/squares/2-2", admin, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete: got %d, want 404", w.Code)
	}
}

func TestGridRollScoreWinner(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")

	// Roll before locking the grid is refused.
	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/grid/roll", admin, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("roll unlocked: got %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/grid/lock", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lock: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/grid/roll", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("roll: got %d: %s", w.Code, w.Body.String())
	}
	var roll RollNumbersResponse
	json.NewDecoder(w.Body).Decode(&roll)
	if len(roll.HomeNumbers) != 10 || len(roll.AwayNumbers) != 10 {
		t.Fatalf("numbers = %v / %v", roll.HomeNumbers, roll.AwayNumbers)
	}
	if !roll.IsLocked {
		t.Error("roll should lock the pool")
	}

	w = doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/score", admin,
		ScoreRequest{HomeScore: "21", AwayScore: "14"})
	if w.Code != http.StatusOK {
		t.Fatalf("score: got %d", w.Code)
	}
	var score ScoreResponse
	json.NewDecoder(w.Body).Decode(&score)
	if score.Winner == nil {
		t.Fatal("expected a resolved winner after roll and score")
	}

	// Claim the winning cell, then record the quarter.
	row, col, err := squares.ParseCellID(score.Winner.CellID)
	if err != nil {
		t.Fatalf("winner cell %q: %v", score.Winner.CellID, err)
	}
	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", admin,
		ClaimRequest{Row: row, Col: col, Owner: "lucky", IsPaid: true})
	if w.Code != http.StatusOK {
		t.Fatalf("claim winner cell: got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/winners/q1", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("record winner: got %d: %s", w.Code, w.Body.String())
	}
	var winner QuarterWinnerResponse
	json.NewDecoder(w.Body).Decode(&winner)
	if winner.Owner != "LUCKY" || winner.Quarter != "q1" {
		t.Errorf("winner = %+v", winner)
	}

	// "final" is a payout bucket, not a recordable quarter.
	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/winners/final", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("record final: got %d, want 400", w.Code)
	}
}

func TestUndoRestoresGrid(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")
	player := authenticate(t, r, "DEMO01", "DEMO01")

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/undo", admin, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("undo with no history: got %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/squares", player,
		ClaimRequest{Row: 8, Col: 8, Owner: "oops", PaymentMethod: "cash"})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: got %d", w.Code)
	}

	// Undo is admin only.
	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/undo", player, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("player undo: got %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/undo", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo: got %d: %s", w.Code, w.Body.String())
	}
	var resp UndoResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if _, ok := resp.Squares["8-8"]; ok {
		t.Error("undone claim still present")
	}
	if resp.HistoryAvailable {
		t.Error("history should be drained")
	}
}

func TestResetRevokesSessions(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/reset", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: got %d: %s", w.Code, w.Body.String())
	}

	// The admin's own session is gone too.
	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/export", admin, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("post-reset request: got %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/state", "", nil)
	var state StateResponse
	json.NewDecoder(w.Body).Decode(&state)
	if len(state.Pool.Squares) != 0 || state.Pool.HomeNumbers != nil {
		t.Error("reset should clear squares and numbers")
	}
	if state.Pool.IsInitialized {
		t.Error("reset should clear isInitialized")
	}
}

func TestExport(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")
	player := authenticate(t, r, "DEMO01", "DEMO01")

	w := doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/export", player, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("player export: got %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/export", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("export should be an attachment")
	}
	var pool squares.Pool
	if err := json.NewDecoder(w.Body).Decode(&pool); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if pool.AdminPin != "1234" {
		t.Error("export should include the admin pin for backup")
	}
}

func TestSettings(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")

	w := doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/settings/payments", admin,
		PaymentSettingsRequest{Venmo: "@host", PricePerSquare: "25"})
	if w.Code != http.StatusOK {
		t.Fatalf("payments: got %d", w.Code)
	}

	// Unbalanced distribution saves, flagged.
	w = doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/settings/distribution", admin,
		squares.PrizeDistribution{Q1: 25, Q2: 25, Q3: 25, Final: 30})
	if w.Code != http.StatusOK {
		t.Fatalf("distribution: got %d", w.Code)
	}
	var dist DistributionResponse
	json.NewDecoder(w.Body).Decode(&dist)
	if dist.Balanced || dist.Sum != 105 {
		t.Errorf("distribution = %+v", dist)
	}

	w = doJSON(t, r, http.MethodPut, "/api/pools/DEMO01/settings/title", admin,
		TitleRequest{Title: "Playoff Pool", HomeTeam: "Chiefs", AwayTeam: "Bills"})
	if w.Code != http.StatusOK {
		t.Fatalf("title: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/state", "", nil)
	var state StateResponse
	json.NewDecoder(w.Body).Decode(&state)
	if state.Pool.Title != "Playoff Pool" || state.Pool.HomeTeam != "Chiefs" {
		t.Errorf("title/teams = %q / %q", state.Pool.Title, state.Pool.HomeTeam)
	}
	if state.Pool.PaymentSettings.PricePerSquare != "25" {
		t.Errorf("price = %q", state.Pool.PaymentSettings.PricePerSquare)
	}
	// 4 seeded squares at $25.
	if state.Stats.TotalPot != 100 {
		t.Errorf("pot = %d, want 100", state.Stats.TotalPot)
	}
}

// waitForDirectory polls the directory until the entry for code
// satisfies ready. Stats syncs run on their own goroutine, so tests
// observing them have to wait.
func waitForDirectory(t *testing.T, store *DocStore, code string, ready func(DirectoryEntry) bool) DirectoryEntry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last DirectoryEntry
	for time.Now().Before(deadline) {
		entries, err := store.ListDirectory(context.Background())
		if err != nil {
			t.Fatalf("list directory: %v", err)
		}
		for _, e := range entries {
			if e.PoolCode == code {
				last = e
				if ready(e) {
					return e
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("directory never reached expected state, last entry = %+v", last)
	return DirectoryEntry{}
}

func TestPriceChangeSyncsDirectory(t *testing.T) {
	r, store := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "Repriced", AdminPin: "4321"})
	var created CreatePoolResponse
	json.NewDecoder(w.Body).Decode(&created)

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/activate", "",
		ActivateRequest{LicenseKey: "00000000-11111111-22222222-33333333"})
	if w.Code != http.StatusOK {
		t.Fatalf("activate: got %d", w.Code)
	}
	var act ActivateResponse
	json.NewDecoder(w.Body).Decode(&act)

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/squares", act.Token,
		ClaimRequest{Row: 0, Col: 0, Owner: "A", PaymentMethod: "cash"})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: got %d: %s", w.Code, w.Body.String())
	}
	waitForDirectory(t, store, created.PoolCode, func(e DirectoryEntry) bool {
		return e.SquaresClaimed == 1 && e.TotalPot == 10
	})

	w = doJSON(t, r, http.MethodPut, "/api/pools/"+created.PoolCode+"/settings/payments", act.Token,
		PaymentSettingsRequest{Venmo: "@host", PricePerSquare: "50"})
	if w.Code != http.StatusOK {
		t.Fatalf("payments: got %d: %s", w.Code, w.Body.String())
	}

	// The mirror must pick up the new price and revalue the pot without
	// waiting for another claim.
	entry := waitForDirectory(t, store, created.PoolCode, func(e DirectoryEntry) bool {
		return e.PricePerSquare == "50" && e.TotalPot == 50
	})
	if entry.SquaresClaimed != 1 {
		t.Errorf("claimed = %d, want 1", entry.SquaresClaimed)
	}
}

func TestRotateCodeKeepsAdminSession(t *testing.T) {
	r, _ := setupServer(t)
	admin := authenticate(t, r, "DEMO01", "1234")

	w := doJSON(t, r, http.MethodPost, "/api/pools/DEMO01/code/rotate", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rotate: got %d: %s", w.Code, w.Body.String())
	}
	var resp RotateCodeResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.PoolCode == "DEMO01" || len(resp.PoolCode) != squares.CodeLength {
		t.Fatalf("rotated code = %q", resp.PoolCode)
	}

	// Old code no longer resolves; the admin session works on the new one.
	w = doJSON(t, r, http.MethodGet, "/api/pools/DEMO01/state", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("old code: got %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/pools/"+resp.PoolCode+"/export", admin, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin on new code: got %d, want 200", w.Code)
	}
}

func TestActivate(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "Fresh", AdminPin: "5555"})
	var created CreatePoolResponse
	json.NewDecoder(w.Body).Decode(&created)

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/activate", "",
		ActivateRequest{LicenseKey: "not-a-key"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad key: got %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/activate", "",
		ActivateRequest{LicenseKey: "a1b2c3d4-e5f60718-293a4b5c-6d7e8f90"})
	if w.Code != http.StatusOK {
		t.Fatalf("activate: got %d: %s", w.Code, w.Body.String())
	}
	var act ActivateResponse
	json.NewDecoder(w.Body).Decode(&act)
	if act.Token == "" || act.Role != "admin" {
		t.Errorf("activate = %+v", act)
	}

	w = doJSON(t, r, http.MethodGet, "/api/pools/"+created.PoolCode+"/state", act.Token, nil)
	var state StateResponse
	json.NewDecoder(w.Body).Decode(&state)
	if !state.Pool.IsPaidPool || !state.Pool.IsInitialized {
		t.Error("activation should set isPaidPool and isInitialized")
	}
}

func TestPaymentReturn(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/pools", "", CreatePoolRequest{Title: "Checkout", AdminPin: "5555"})
	var created CreatePoolResponse
	json.NewDecoder(w.Body).Decode(&created)

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/payment", "",
		PaymentReturnRequest{Status: "cancelled"})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("cancelled: got %d, want 402", w.Code)
	}

	// A cancelled checkout must not activate anything.
	w = doJSON(t, r, http.MethodGet, "/api/pools/"+created.PoolCode+"/state", "", nil)
	var state StateResponse
	json.NewDecoder(w.Body).Decode(&state)
	if state.Pool.IsPaidPool {
		t.Fatal("cancelled checkout activated the pool")
	}

	w = doJSON(t, r, http.MethodPost, "/api/pools/"+created.PoolCode+"/payment", "",
		PaymentReturnRequest{Status: "success"})
	if w.Code != http.StatusOK {
		t.Fatalf("success: got %d: %s", w.Code, w.Body.String())
	}
}
