package ui

import "testing"

func TestStyles(t *testing.T) {
	SetPlain(false)
	defer SetPlain(false)

	if got := Success("ok"); got != ColorGreen+"ok"+ColorReset {
		t.Errorf("Success() = %q", got)
	}
	if got := Count(0); got != "0" {
		t.Errorf("Count(0) = %q, want unstyled", got)
	}
	if got := Count(3); got != ColorYellow+"3"+ColorReset {
		t.Errorf("Count(3) = %q", got)
	}

	SetPlain(true)
	if got := Error("bad"); got != "bad" {
		t.Errorf("Error() in plain mode = %q", got)
	}
	if got := Bold("x"); got != "x" {
		t.Errorf("Bold() in plain mode = %q", got)
	}
}
