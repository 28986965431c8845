package color

import "testing"

func TestColor_Disabled(t *testing.T) {
	c := New(false)
	if got := c.FormatPlanHeader(1, 2, 3); got != "Plan: 1 to add, 2 to modify, 3 to drop." {
		t.Errorf("FormatPlanHeader() = %q", got)
	}
	if got := c.FormatSummaryLine("tables", 0, 1, 0); got != "  tables: 0 to add, 1 to modify, 0 to drop" {
		t.Errorf("FormatSummaryLine() = %q", got)
	}
	for action, want := range map[string]string{"create": "+", "replace": "~", "drop": "-", "noop": " "} {
		if got := c.PlanSymbol(action); got != want {
			t.Errorf("PlanSymbol(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestColor_Environment(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "")
	if got := New(true).Add("x"); got != Green+"x"+Reset {
		t.Errorf("expected colored output, got %q", got)
	}

	t.Setenv("NO_COLOR", "1")
	if got := New(true).Add("x"); got != "x" {
		t.Errorf("NO_COLOR should disable colors, got %q", got)
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if got := New(true).Destroy("x"); got != "x" {
		t.Errorf("dumb terminal should disable colors, got %q", got)
	}
}
