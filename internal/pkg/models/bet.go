package models

import (
	"strings"
	"time"
)

// SessionKey identifies one conversation. There is at most one in-flight
// draft per (chat, user) pair.
type SessionKey struct {
	ChatID int64
	UserID int64
}

// Result is the settlement state of a bet. The values are the texts stored
// in the sheet's result column.
type Result string

const (
	ResultPending Result = "Pendiente"
	ResultWin     Result = "Ganada"
	ResultLoss    Result = "Perdida"
	ResultVoid    Result = "Nula"
)

// ResultFromCode maps the one-letter quick-update codes (G|P|N) to a Result.
func ResultFromCode(code string) (Result, bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "G":
		return ResultWin, true
	case "P":
		return ResultLoss, true
	case "N":
		return ResultVoid, true
	}
	return "", false
}

// Code returns the one-letter code the sheet web app expects for updates.
func (r Result) Code() string {
	switch r {
	case ResultWin:
		return "G"
	case ResultLoss:
		return "P"
	case ResultVoid:
		return "N"
	}
	return ""
}

// Draft is the in-progress bet record for one conversation. Odds and Stake
// stay zero until their input has parsed successfully; raw user text is
// never stored in them.
type Draft struct {
	Row       int    // sheet row under the incremental policy, 0 before alloc
	BetID     string // generated at most once per draft
	Date      string // DD/MM/YYYY, filled with "today" at commit time if empty
	Teams     string // "A vs B"
	Selection string // 1|X|2|1X|X2|12 or free text
	Odds      float64
	Stake     float64
}

// ToBet snapshots a completed draft as a committed record.
func (d *Draft) ToBet(now time.Time) *Bet {
	return &Bet{
		BetID:       d.BetID,
		Date:        d.Date,
		Teams:       d.Teams,
		Selection:   d.Selection,
		Odds:        d.Odds,
		Stake:       d.Stake,
		Result:      ResultPending,
		Row:         d.Row,
		CommittedAt: now,
	}
}

// Bet is a committed record: what gets sent to the sheet under the deferred
// policy and appended to the journal under both policies.
type Bet struct {
	BetID       string    `json:"betId"`
	Date        string    `json:"date"`
	Teams       string    `json:"teams"`
	Selection   string    `json:"selection"`
	Odds        float64   `json:"odds"`
	Stake       float64   `json:"stake"`
	Result      Result    `json:"result"`
	Row         int       `json:"row,omitempty"`
	CommittedAt time.Time `json:"committedAt"`
}
