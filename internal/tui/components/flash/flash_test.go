package flash

import (
	"strings"
	"testing"
)

func TestFlasherStates(t *testing.T) {
	f := New()
	if f.Active() || f.Bar(20) != "" {
		t.Fatal("new flasher should be idle")
	}

	f.Flash(true)
	if !f.Active() || !strings.Contains(f.Bar(20), "ALARM") {
		t.Error("flash on should render the bar")
	}
	f.Flash(false)
	if !f.Active() {
		t.Error("flash off phase is still active")
	}
	f.Clear()
	if f.Active() {
		t.Error("Clear should idle the flasher")
	}

	var nilFlasher *Flasher
	if nilFlasher.Active() || nilFlasher.Bar(10) != "" {
		t.Error("nil flasher should be idle")
	}
}
