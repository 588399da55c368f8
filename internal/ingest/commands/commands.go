// Package commands recognizes out-of-band instructions before any FSM
// dispatch, so conversational state never leaks into command parsing.
package commands

import (
	"regexp"
	"strings"
)

type Kind int

const (
	// None means the text is plain conversational input for the FSM.
	None Kind = iota
	Start
	Cancel
	Suggest
	QuickResult
)

// Command is one recognized instruction. BetID and ResultCode are only set
// for QuickResult.
type Command struct {
	Kind       Kind
	BetID      string
	ResultCode string
}

// Quick result update: /B<betId> <G|P|N>.
var quickResultRe = regexp.MustCompile(`^/B([A-Za-z0-9_\-]+)\s+([GgPpNn])$`)

// Recognize classifies an inbound text. Anything that is not a known
// command comes back as Kind None and goes to the conversation controller.
func Recognize(text string) Command {
	trimmed := strings.TrimSpace(text)

	if m := quickResultRe.FindStringSubmatch(trimmed); m != nil {
		return Command{Kind: QuickResult, BetID: m[1], ResultCode: strings.ToUpper(m[2])}
	}

	switch strings.ToLower(trimmed) {
	case "/start", "/help":
		return Command{Kind: Start}
	case "/cancel":
		return Command{Kind: Cancel}
	case "/apuesta":
		return Command{Kind: Suggest}
	}

	return Command{Kind: None}
}
