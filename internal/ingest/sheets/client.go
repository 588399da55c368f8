// Package sheets talks to the Google Sheets web app (Apps Script /exec
// endpoint) that backs the bet ledger. The web app exposes a small JSON
// action API; row allocation, per-cell writes and formula finalization all
// go through it.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

// Ledger column layout, fixed by the spreadsheet template.
const (
	ColDate      = "A"
	ColTeams     = "B"
	ColSelection = "C"
	ColOdds      = "D"
	ColStake     = "E"
	ColResult    = "F"
	// ColBetID is owned server-side: the web app fills it during alloc and
	// commit, the bot never writes it. Declared to document the layout.
	ColBetID = "I"
)

// Client is the narrow surface the conversation controller needs from the
// spreadsheet backend.
type Client interface {
	// Alloc reserves the next free row and returns its number together with
	// the bet id the web app wrote into the id column.
	Alloc(ctx context.Context) (row int, betID string, err error)

	// Set writes one value into (row, col).
	Set(ctx context.Context, row int, col string, value any) error

	// Finalize fills the derived/formula columns for a completed row.
	Finalize(ctx context.Context, row int) error

	// UpdateResult sets the result column of the row identified by betID.
	UpdateResult(ctx context.Context, betID string, resultCode string) (row int, err error)

	// ReadCell returns the display value of an A1 cell address.
	ReadCell(ctx context.Context, cell string) (string, error)

	// Commit writes a whole record in a single request (deferred policy).
	Commit(ctx context.Context, bet *models.Bet) (row int, err error)
}

// WebAppClient implements Client against the Apps Script web app.
type WebAppClient struct {
	baseURL string
	client  *http.Client
}

func NewWebAppClient(baseURL string, timeout time.Duration) *WebAppClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebAppClient{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		// Apps Script answers POSTs with a 302 to the result document, so
		// redirects must be followed.
		client: &http.Client{Timeout: timeout},
	}
}

type actionResponse struct {
	OK     bool            `json:"ok"`
	Row    int             `json:"row"`
	BetID  string          `json:"betId"`
	Value  json.RawMessage `json:"value"`
	ErrMsg string          `json:"error"`
}

func (c *WebAppClient) post(ctx context.Context, payload map[string]any) (*actionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

func (c *WebAppClient) get(ctx context.Context, params url.Values) (*actionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (*actionResponse, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sheets returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ar actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("failed to decode sheets response: %w", err)
	}
	if ar.ErrMsg != "" {
		return nil, fmt.Errorf("sheets error: %s", ar.ErrMsg)
	}
	return &ar, nil
}

func (c *WebAppClient) Alloc(ctx context.Context) (int, string, error) {
	ar, err := c.post(ctx, map[string]any{"action": "alloc"})
	if err != nil {
		return 0, "", err
	}
	if ar.Row <= 0 || ar.BetID == "" {
		return 0, "", fmt.Errorf("alloc returned row=%d betId=%q", ar.Row, ar.BetID)
	}
	return ar.Row, ar.BetID, nil
}

func (c *WebAppClient) Set(ctx context.Context, row int, col string, value any) error {
	_, err := c.post(ctx, map[string]any{"action": "set", "row": row, "col": col, "value": value})
	return err
}

func (c *WebAppClient) Finalize(ctx context.Context, row int) error {
	_, err := c.post(ctx, map[string]any{"action": "finalize", "row": row})
	return err
}

func (c *WebAppClient) UpdateResult(ctx context.Context, betID, resultCode string) (int, error) {
	ar, err := c.post(ctx, map[string]any{"action": "updateResult", "betId": betID, "result": resultCode})
	if err != nil {
		return 0, err
	}
	if !ar.OK {
		return 0, fmt.Errorf("updateResult rejected for betId=%s", betID)
	}
	return ar.Row, nil
}

func (c *WebAppClient) ReadCell(ctx context.Context, cell string) (string, error) {
	params := url.Values{}
	params.Set("action", "readCell")
	params.Set("cell", cell)

	ar, err := c.get(ctx, params)
	if err != nil {
		return "", err
	}

	// The value may come back as a string, number or bool.
	var s string
	if len(ar.Value) > 0 {
		if err := json.Unmarshal(ar.Value, &s); err != nil {
			s = string(ar.Value)
		}
	}
	return s, nil
}

func (c *WebAppClient) Commit(ctx context.Context, bet *models.Bet) (int, error) {
	ar, err := c.post(ctx, map[string]any{
		"action":    "commit",
		"betId":     bet.BetID,
		"date":      bet.Date,
		"teams":     bet.Teams,
		"selection": bet.Selection,
		"odds":      bet.Odds,
		"stake":     bet.Stake,
		"result":    string(bet.Result),
	})
	if err != nil {
		return 0, err
	}
	if !ar.OK {
		return 0, fmt.Errorf("commit rejected for betId=%s", bet.BetID)
	}
	return ar.Row, nil
}
