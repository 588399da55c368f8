package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

func TestAlloc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["action"] != "alloc" {
			t.Errorf("action = %v, want alloc", payload["action"])
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "row": 7, "betId": "ABC123"})
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	row, betID, err := c.Alloc(context.Background())
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if row != 7 || betID != "ABC123" {
		t.Errorf("Alloc = (%d, %q), want (7, ABC123)", row, betID)
	}
}

func TestSetSendsRowColValue(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	if err := c.Set(context.Background(), 7, ColTeams, "Real Madrid vs Barcelona"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got["action"] != "set" || got["row"] != float64(7) || got["col"] != "B" {
		t.Errorf("unexpected payload: %v", got)
	}
	if got["value"] != "Real Madrid vs Barcelona" {
		t.Errorf("value = %v", got["value"])
	}
}

func TestUpdateResultNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	if _, err := c.UpdateResult(context.Background(), "NOPE", "G"); err == nil {
		t.Fatal("expected error for unknown betId")
	}
}

func TestReadCell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "readCell" || r.URL.Query().Get("cell") != "J1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{"value": "Betis vs Sevilla | 1 | 2.10"})
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	val, err := c.ReadCell(context.Background(), "J1")
	if err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if val != "Betis vs Sevilla | 1 | 2.10" {
		t.Errorf("ReadCell = %q", val)
	}
}

func TestCommitSendsWholeRecord(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "row": 12})
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	bet := &models.Bet{
		BetID: "B1", Date: "05/03/2026", Teams: "A vs B",
		Selection: "1X", Odds: 1.85, Stake: 1, Result: models.ResultPending,
	}
	row, err := c.Commit(context.Background(), bet)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if row != 12 {
		t.Errorf("row = %d, want 12", row)
	}
	if got["action"] != "commit" || got["teams"] != "A vs B" || got["result"] != "Pendiente" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWebAppClient(srv.URL, time.Second)
	if err := c.Finalize(context.Background(), 3); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}
