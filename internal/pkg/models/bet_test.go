package models

import (
	"testing"
	"time"
)

func TestResultFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Result
		ok   bool
	}{
		{"G", ResultWin, true},
		{"g", ResultWin, true},
		{" p ", ResultLoss, true},
		{"N", ResultVoid, true},
		{"X", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ResultFromCode(tt.code)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResultFromCode(%q) = (%q, %v), want (%q, %v)", tt.code, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResultCodeRoundTrip(t *testing.T) {
	for _, r := range []Result{ResultWin, ResultLoss, ResultVoid} {
		got, ok := ResultFromCode(r.Code())
		if !ok || got != r {
			t.Errorf("round trip failed for %s: got (%q, %v)", r, got, ok)
		}
	}
	if ResultPending.Code() != "" {
		t.Error("pending has no quick-update code")
	}
}

func TestDraftToBet(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	d := &Draft{
		Row: 7, BetID: "BET007", Date: "05/03/2026",
		Teams: "A vs B", Selection: "1X", Odds: 1.85, Stake: 2,
	}

	bet := d.ToBet(now)
	if bet.Result != ResultPending {
		t.Errorf("Result = %q, want Pendiente", bet.Result)
	}
	if bet.BetID != "BET007" || bet.Row != 7 || bet.CommittedAt != now {
		t.Errorf("bet = %+v", bet)
	}
}
