package validation

import (
	"errors"
	"testing"
)

func TestParseTeams(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"Real Madrid vs Barcelona", "Real Madrid vs Barcelona", true},
		{"  Real   Madrid   vs   Barcelona  ", "Real Madrid vs Barcelona", true},
		{"Sevilla v Betis", "Sevilla vs Betis", true},
		{"Sevilla VS Betis", "Sevilla vs Betis", true},
		{"Sevilla - Betis", "Sevilla vs Betis", true},
		{"Al-Hilal vs Al Wahda", "Al-Hilal vs Al Wahda", true},
		{"Atleti vs. Getafe", "Atleti vs Getafe", true},
		{"Real Madrid", "", false},
		{"vs Barcelona", "", false},
		{"Real Madrid vs", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := ParseTeams(tt.input)
		if tt.ok {
			if err != nil {
				t.Errorf("ParseTeams(%q) unexpected error: %v", tt.input, err)
				continue
			}
			if got != tt.expected {
				t.Errorf("ParseTeams(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		} else if err == nil {
			t.Errorf("ParseTeams(%q) = %q, want error", tt.input, got)
		}
	}
}

func TestParseTeamsTypedError(t *testing.T) {
	_, err := ParseTeams("no separator here")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Field != "teams" {
		t.Errorf("ParseError.Field = %q, want %q", pe.Field, "teams")
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		input      string
		expected   string
		enumerated bool
		ok         bool
	}{
		{"1", "1", true, true},
		{"x", "X", true, true},
		{"1x", "1X", true, true},
		{"X2", "X2", true, true},
		{"12", "12", true, true},
		{"Over 2.5 goals", "Over 2.5 goals", false, true},
		{"  handicap -1  ", "handicap -1", false, true},
		{"", "", false, false},
		{"   ", "", false, false},
	}

	for _, tt := range tests {
		got, enumerated, err := ParseSelection(tt.input)
		if tt.ok {
			if err != nil {
				t.Errorf("ParseSelection(%q) unexpected error: %v", tt.input, err)
				continue
			}
			if got != tt.expected || enumerated != tt.enumerated {
				t.Errorf("ParseSelection(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, enumerated, tt.expected, tt.enumerated)
			}
		} else if err == nil {
			t.Errorf("ParseSelection(%q) should fail", tt.input)
		}
	}
}

func TestParseOdds(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1.85", 1.85, true},
		{"1,85", 1.85, true},
		{" 2,10 ", 2.10, true},
		{"1.01", 1.01, true},
		{"0.99", 0, false},
		{"1.00", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"+Inf", 0, false},
		{"-inf", 0, false},
		{"1e309", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseOdds(tt.input)
		if tt.ok {
			if err != nil || got != tt.expected {
				t.Errorf("ParseOdds(%q) = (%v, %v), want %v", tt.input, got, err, tt.expected)
			}
		} else if err == nil {
			t.Errorf("ParseOdds(%q) = %v, want error", tt.input, got)
		}
	}
}

func TestParseStake(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1.00", 1.0, true},
		{"2,50", 2.5, true},
		{"0.01", 0.01, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"mucho", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"+Inf", 0, false},
		{"-Infinity", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseStake(tt.input)
		if tt.ok {
			if err != nil || got != tt.expected {
				t.Errorf("ParseStake(%q) = (%v, %v), want %v", tt.input, got, err, tt.expected)
			}
		} else if err == nil {
			t.Errorf("ParseStake(%q) = %v, want error", tt.input, got)
		}
	}
}

func TestStakeShortcuts(t *testing.T) {
	for _, input := range []string{"Usar 1€", "usar 1 €", "USAR 2€", " Usar 1€ "} {
		if !IsDefaultStake(input) {
			t.Errorf("IsDefaultStake(%q) = false, want true", input)
		}
	}
	for _, input := range []string{"Cambiar importe", "cambiar", "CAMBIAR IMPORTE"} {
		if !IsChangeAmount(input) {
			t.Errorf("IsChangeAmount(%q) = false, want true", input)
		}
	}
	if IsDefaultStake("1.50") || IsChangeAmount("1.50") {
		t.Error("numeric input must not match the keyboard shortcuts")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"apuesta del 05/03/2026", "05/03/2026", true},
		{"1/2/26", "01/02/2026", true},
		{"31.12.2025", "31/12/2025", true},
		{"15-08-2026", "15/08/2026", true},
		{"31/04/2026", "", false}, // April has 30 days
		{"10/13/2026", "", false},
		{"sin fecha", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("ParseDate(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestValidCellRef(t *testing.T) {
	valid := []string{"J1", "A10", "AB123", "j1"}
	invalid := []string{"1A", "J", "10", "J 1", "", "J1:K2"}

	for _, c := range valid {
		if !ValidCellRef(c) {
			t.Errorf("ValidCellRef(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if ValidCellRef(c) {
			t.Errorf("ValidCellRef(%q) = true, want false", c)
		}
	}
}
