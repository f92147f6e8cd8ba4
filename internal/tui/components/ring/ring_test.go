package ring

import (
	"strings"
	"testing"

	"github.com/julianstephens/alarmist/internal/models"
)

func TestView(t *testing.T) {
	out := View(models.Alarm{Time: "07:05", Label: "Wake up", SnoozeCount: 2}, "tone", 0, 0)
	for _, want := range []string{"7:05 AM", "Wake up", "Snoozed 2 time(s)", "Sound: tone", "Snooze 5 min"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}
}
