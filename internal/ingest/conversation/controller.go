// Package conversation drives the stepwise bet-ingest flow: one state
// machine per (chat, user) key that validates fields as they arrive,
// mutates the draft and commits the finished record to the sheet.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avilchesko/betsheet/internal/ingest/commands"
	"github.com/avilchesko/betsheet/internal/ingest/dedupe"
	"github.com/avilchesko/betsheet/internal/ingest/session"
	"github.com/avilchesko/betsheet/internal/ingest/sheets"
	"github.com/avilchesko/betsheet/internal/pkg/models"
	"github.com/avilchesko/betsheet/internal/pkg/validation"
)

// Policy selects how a finished draft reaches the sheet.
type Policy string

const (
	// PolicyIncremental allocates a row on the first field and writes each
	// field the moment it validates. Write failures warn and the flow keeps
	// going: partial progress in the sheet beats losing the conversation.
	PolicyIncremental Policy = "incremental"

	// PolicyDeferred accumulates the draft in memory and sends the whole
	// record in one request after an explicit confirmation step.
	PolicyDeferred Policy = "deferred"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyIncremental, "":
		return PolicyIncremental, nil
	case PolicyDeferred:
		return PolicyDeferred, nil
	}
	return "", fmt.Errorf("unknown commit policy: %q", s)
}

// Replier sends outbound messages; the transport implements it so the
// controller never touches the Telegram API.
type Replier interface {
	Reply(key models.SessionKey, text string)
	ReplyWithChoices(key models.SessionKey, text string, choices [][]string)
}

// Journal is the optional local audit copy of committed bets.
type Journal interface {
	Append(ctx context.Context, bet *models.Bet) error
	UpdateResult(ctx context.Context, betID string, result models.Result) error
}

type Options struct {
	Sheets       sheets.Client
	Gate         *dedupe.Gate
	Journal      Journal // nil disables journaling
	Sessions     *session.Store
	Replier      Replier
	Policy       Policy
	DefaultStake float64
	SuggestCell  string
	// SuggestAllowedUserIDs restricts /apuesta; empty allows everyone.
	SuggestAllowedUserIDs []int64
	Now                   func() time.Time
	Logger                *slog.Logger
}

type Controller struct {
	sheets         sheets.Client
	gate           *dedupe.Gate
	journal        Journal
	sessions       *session.Store
	replier        Replier
	policy         Policy
	defaultStake   float64
	suggestCell    string
	suggestAllowed []int64
	now            func() time.Time
	logger         *slog.Logger
}

func New(opts Options) *Controller {
	c := &Controller{
		sheets:         opts.Sheets,
		gate:           opts.Gate,
		journal:        opts.Journal,
		sessions:       opts.Sessions,
		replier:        opts.Replier,
		policy:         opts.Policy,
		defaultStake:   opts.DefaultStake,
		suggestCell:    opts.SuggestCell,
		suggestAllowed: opts.SuggestAllowedUserIDs,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if c.gate == nil {
		c.gate = dedupe.NewGate(nil, "", 0)
	}
	if c.sessions == nil {
		c.sessions = session.NewStore()
	}
	if c.policy == "" {
		c.policy = PolicyIncremental
	}
	if c.defaultStake <= 0 {
		c.defaultStake = 1.0
	}
	if c.suggestCell == "" {
		c.suggestCell = "J1"
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Dispatch routes one inbound text. Commands resolve before any FSM state
// is consulted; everything else steps the conversation under the key's
// lock, so two updates for the same key never interleave.
func (c *Controller) Dispatch(ctx context.Context, key models.SessionKey, text string) {
	switch cmd := commands.Recognize(text); cmd.Kind {
	case commands.Start:
		c.sessions.Do(key, func(*session.Session) *session.Session {
			c.replier.Reply(key, msgWelcome)
			return &session.Session{Key: key, State: session.StateTeams}
		})
	case commands.Cancel:
		c.Cancel(key)
	case commands.Suggest:
		c.Suggest(ctx, key)
	case commands.QuickResult:
		c.UpdateResult(ctx, key, cmd.BetID, cmd.ResultCode)
	default:
		c.sessions.Do(key, func(s *session.Session) *session.Session {
			return c.step(ctx, key, s, text)
		})
	}
}

// Cancel drops the key's session unconditionally, from any state.
func (c *Controller) Cancel(key models.SessionKey) {
	c.sessions.Do(key, func(*session.Session) *session.Session {
		c.replier.Reply(key, msgCancelled)
		return nil
	})
}

func (c *Controller) step(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	if s == nil {
		// No active conversation: a message matching the teams pattern
		// seeds a new draft, anything else gets a usage hint.
		if _, err := validation.ParseTeams(text); err != nil {
			c.replier.Reply(key, msgFallback)
			return nil
		}
		s = &session.Session{Key: key, State: session.StateTeams}
	}

	switch s.State {
	case session.StateTeams:
		return c.stepTeams(ctx, key, s, text)
	case session.StateSelection:
		return c.stepSelection(ctx, key, s, text)
	case session.StateFreeSelection:
		return c.stepFreeSelection(ctx, key, s, text)
	case session.StateOdds:
		return c.stepOdds(ctx, key, s, text)
	case session.StateStake:
		return c.stepStake(ctx, key, s, text)
	case session.StateConfirm:
		return c.stepConfirm(ctx, key, s, text)
	}

	c.logger.Error("session in unknown state", "state", s.State, "chat_id", key.ChatID)
	c.replier.Reply(key, msgFallback)
	return nil
}

func (c *Controller) stepTeams(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	teams, err := validation.ParseTeams(text)
	if err != nil {
		c.replier.Reply(key, msgBadTeams)
		return s
	}
	s.Draft.Teams = teams
	if date, ok := validation.ParseDate(text); ok {
		s.Draft.Date = date
	}

	if c.policy == PolicyIncremental {
		if s.Draft.Row == 0 {
			row, betID, err := c.sheets.Alloc(ctx)
			if err != nil {
				c.warnWrite(key, "reservar fila", err)
			} else {
				s.Draft.Row = row
				s.Draft.BetID = betID
			}
		}
		c.setField(ctx, key, &s.Draft, sheets.ColTeams, teams, "equipos")
	}

	c.replier.ReplyWithChoices(key, msgAskSelection, selectionChoices)
	s.State = session.StateSelection
	return s
}

func (c *Controller) stepSelection(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	if strings.EqualFold(strings.TrimSpace(text), choiceOther) {
		c.replier.Reply(key, msgAskFreeText)
		s.State = session.StateFreeSelection
		return s
	}

	// Lenient: anything non-empty that is not in the 1X2 set is taken
	// verbatim, users bet markets outside the keyboard.
	sel, _, err := validation.ParseSelection(text)
	if err != nil {
		c.replier.ReplyWithChoices(key, msgBadSelection, selectionChoices)
		return s
	}
	return c.acceptSelection(ctx, key, s, sel)
}

func (c *Controller) stepFreeSelection(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	sel, _, err := validation.ParseSelection(text)
	if err != nil {
		c.replier.Reply(key, msgAskFreeText)
		return s
	}
	return c.acceptSelection(ctx, key, s, sel)
}

func (c *Controller) acceptSelection(ctx context.Context, key models.SessionKey, s *session.Session, sel string) *session.Session {
	s.Draft.Selection = sel
	if c.policy == PolicyIncremental {
		c.setField(ctx, key, &s.Draft, sheets.ColSelection, sel, "la selección")
	}
	c.replier.Reply(key, msgAskOdds)
	s.State = session.StateOdds
	return s
}

func (c *Controller) stepOdds(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	odds, err := validation.ParseOdds(text)
	if err != nil {
		c.replier.Reply(key, msgBadOdds)
		return s
	}
	s.Draft.Odds = odds
	if c.policy == PolicyIncremental {
		c.setField(ctx, key, &s.Draft, sheets.ColOdds, odds, "la cuota")
	}
	c.replier.ReplyWithChoices(key, msgAskStake, stakeChoices(c.defaultStake))
	s.State = session.StateStake
	return s
}

func (c *Controller) stepStake(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	switch {
	case !s.AwaitingAmount && validation.IsChangeAmount(text):
		// One-shot: next input is parsed as a number, no keyboard detour.
		s.AwaitingAmount = true
		c.replier.Reply(key, msgAskAmount)
		return s
	case !s.AwaitingAmount && validation.IsDefaultStake(text):
		s.Draft.Stake = c.defaultStake
	default:
		stake, err := validation.ParseStake(text)
		if err != nil {
			c.replier.Reply(key, msgBadStake)
			return s
		}
		s.Draft.Stake = stake
	}
	s.AwaitingAmount = false

	if s.Draft.Date == "" {
		s.Draft.Date = c.now().Format("02/01/2006")
	}
	// Incremental drafts got their id at alloc; deferred (or a failed
	// alloc) generates one here, exactly once.
	if s.Draft.BetID == "" {
		s.Draft.BetID = uuid.NewString()
	}

	if c.policy == PolicyDeferred {
		c.replier.ReplyWithChoices(key, confirmSummary(&s.Draft), confirmChoices)
		s.State = session.StateConfirm
		return s
	}

	c.commitIncremental(ctx, key, s)
	return nil
}

func (c *Controller) stepConfirm(ctx context.Context, key models.SessionKey, s *session.Session, text string) *session.Session {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(choiceConfirm):
		c.commitDeferred(ctx, key, s)
		return nil
	case strings.ToLower(choiceCancel):
		c.replier.Reply(key, msgCancelled)
		return nil
	default:
		c.replier.ReplyWithChoices(key, msgAskConfirm, confirmChoices)
		return s
	}
}

// commitIncremental writes the closing fields (stake, date, pending result),
// consults the dedupe gate and finalizes the row. Individual failures are
// collected and reported, never fatal: the row may end up partially filled.
func (c *Controller) commitIncremental(ctx context.Context, key models.SessionKey, s *session.Session) {
	d := &s.Draft
	var issues []string
	set := func(col, field string, value any) {
		if d.Row == 0 {
			return
		}
		if err := c.sheets.Set(ctx, d.Row, col, value); err != nil {
			c.logger.Warn("sheet write failed", "col", col, "row", d.Row, "error", err)
			issues = append(issues, fmt.Sprintf("%s(%s): %v", col, field, err))
		}
	}

	set(sheets.ColStake, "stake", d.Stake)
	set(sheets.ColDate, "fecha", d.Date)
	set(sheets.ColResult, "resultado", string(models.ResultPending))

	// Dedupe runs right before finalize, with the full record known. The
	// row is already written, so a hit only warns. A store failure warns
	// too: the user must know the duplicate check did not run.
	if seen, err := c.gate.Seen(ctx, d); err != nil {
		c.logger.Warn("dedupe check failed", "error", err)
		c.replier.Reply(key, msgDedupeDown)
	} else if seen {
		c.replier.Reply(key, msgDuplicateWarn)
	} else if err := c.gate.Remember(ctx, d); err != nil {
		c.logger.Warn("dedupe remember failed", "error", err)
		c.replier.Reply(key, msgDedupeDown)
	}

	if d.Row == 0 {
		issues = append(issues, "alloc: fila no reservada, nada escrito en la hoja")
	} else if err := c.sheets.Finalize(ctx, d.Row); err != nil {
		issues = append(issues, fmt.Sprintf("finalize(G/H): %v", err))
	}

	c.journalAppend(ctx, d)
	c.replier.Reply(key, commitSummary(d, issues))
}

// commitDeferred sends the whole record in one request. A dedupe hit or a
// transport failure aborts: nothing has been written yet, so all-or-nothing
// holds.
func (c *Controller) commitDeferred(ctx context.Context, key models.SessionKey, s *session.Session) {
	d := &s.Draft

	if seen, err := c.gate.Seen(ctx, d); err != nil {
		c.logger.Warn("dedupe check failed", "error", err)
		c.replier.Reply(key, msgDedupeDown)
	} else if seen {
		c.replier.Reply(key, msgDuplicateAbort)
		return
	}

	bet := d.ToBet(c.now())
	row, err := c.sheets.Commit(ctx, bet)
	if err != nil {
		c.logger.Warn("commit failed", "bet_id", d.BetID, "error", err)
		c.replier.Reply(key, fmt.Sprintf("❌ No pude enviar la apuesta a la hoja: %v", err))
		return
	}
	d.Row = row

	if err := c.gate.Remember(ctx, d); err != nil {
		c.logger.Warn("dedupe remember failed", "error", err)
		c.replier.Reply(key, msgDedupeDown)
	}
	c.journalAppend(ctx, d)
	c.replier.Reply(key, commitSummary(d, nil))
}

func (c *Controller) journalAppend(ctx context.Context, d *models.Draft) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(ctx, d.ToBet(c.now())); err != nil {
		c.logger.Warn("journal append failed", "bet_id", d.BetID, "error", err)
	}
}

// UpdateResult is the out-of-band settlement update (/B<betId> G|P|N). It
// never touches sessions or drafts.
func (c *Controller) UpdateResult(ctx context.Context, key models.SessionKey, betID, code string) {
	result, ok := models.ResultFromCode(code)
	if !ok {
		c.replier.Reply(key, msgBadResultCode)
		return
	}

	row, err := c.sheets.UpdateResult(ctx, betID, result.Code())
	if err != nil {
		c.logger.Warn("result update failed", "bet_id", betID, "error", err)
		c.replier.Reply(key, fmt.Sprintf("❌ No pude actualizar betId=%s: %v", betID, err))
		return
	}

	if c.journal != nil {
		if err := c.journal.UpdateResult(ctx, betID, result); err != nil {
			c.logger.Warn("journal result update failed", "bet_id", betID, "error", err)
		}
	}
	c.replier.Reply(key, fmt.Sprintf("✅ Actualizado: betId=%s → Resultado=%s (fila %d)", betID, result, row))
}

// Suggest replies with the configured suggestion cell (/apuesta), gated by
// the allow-list when one is configured.
func (c *Controller) Suggest(ctx context.Context, key models.SessionKey) {
	if !c.allowedToSuggest(key.UserID) {
		c.replier.Reply(key, msgNotAllowed)
		return
	}

	val, err := c.sheets.ReadCell(ctx, c.suggestCell)
	if err != nil {
		c.replier.Reply(key, fmt.Sprintf("❌ Error leyendo %s: %v", c.suggestCell, err))
		return
	}
	c.replier.Reply(key, strings.TrimSpace(fmt.Sprintf("📈 Apuesta sugerida (%s): %s", c.suggestCell, val)))
}

func (c *Controller) allowedToSuggest(userID int64) bool {
	if len(c.suggestAllowed) == 0 {
		return true
	}
	for _, id := range c.suggestAllowed {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Controller) setField(ctx context.Context, key models.SessionKey, d *models.Draft, col string, value any, field string) {
	if d.Row == 0 {
		return
	}
	if err := c.sheets.Set(ctx, d.Row, col, value); err != nil {
		c.logger.Warn("sheet write failed", "col", col, "row", d.Row, "error", err)
		c.warnWrite(key, "escribir "+field, err)
	}
}

func (c *Controller) warnWrite(key models.SessionKey, what string, err error) {
	c.replier.Reply(key, fmt.Sprintf("⚠️ No pude %s en la hoja: %v", what, err))
}
