package commands

import "testing"

func TestRecognize(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"/start", Command{Kind: Start}},
		{"/help", Command{Kind: Start}},
		{"/cancel", Command{Kind: Cancel}},
		{" /cancel ", Command{Kind: Cancel}},
		{"/apuesta", Command{Kind: Suggest}},
		{"/BABC123 P", Command{Kind: QuickResult, BetID: "ABC123", ResultCode: "P"}},
		{"/Bbet-42_x g", Command{Kind: QuickResult, BetID: "bet-42_x", ResultCode: "G"}},
		{"/BABC123 X", Command{Kind: None}}, // unknown result code
		{"/BABC123", Command{Kind: None}},   // missing result code
		{"Real Madrid vs Barcelona", Command{Kind: None}},
		{"1X", Command{Kind: None}},
		{"", Command{Kind: None}},
	}

	for _, tt := range tests {
		if got := Recognize(tt.input); got != tt.want {
			t.Errorf("Recognize(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}
