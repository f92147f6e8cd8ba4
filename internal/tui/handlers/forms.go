package handlers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/sounds"
	"github.com/julianstephens/alarmist/internal/tui/state"
	"github.com/julianstephens/alarmist/internal/utils"
)

var weekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// NewAlarmForm builds the add/edit form bound to fm.
func NewAlarmForm(fm *state.AlarmFormModel, title string) *huh.Form {
	dayOptions := make([]huh.Option[time.Weekday], len(weekdays))
	for i, wd := range weekdays {
		dayOptions[i] = huh.NewOption(wd.String(), wd)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&fm.Time).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("please select a time for the alarm")
					}
					if !utils.ValidateTimeFormat(strings.TrimSpace(s)) {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Label").
				Placeholder("Alarm").
				Value(&fm.Label),
			huh.NewSelect[models.RepeatType]().
				Title("Repeat").
				Options(
					huh.NewOption("Once", models.RepeatOnce),
					huh.NewOption("Daily", models.RepeatDaily),
					huh.NewOption("Weekly", models.RepeatWeekly),
				).
				Value(&fm.Repeat),
		),
		huh.NewGroup(
			huh.NewMultiSelect[time.Weekday]().
				Title("Days").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(func(days []time.Weekday) error {
					if len(days) == 0 {
						return fmt.Errorf("please select at least one day for weekly repeat")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Repeat != models.RepeatWeekly }),
		huh.NewGroup(
			huh.NewInput().
				Title("Custom sound").
				Description("Path to an mp3, wav, ogg, m4a or mp4 file. Leave empty to keep the current sound.").
				Value(&fm.SoundPath).
				Validate(validateSoundPath),
			huh.NewConfirm().
				Title("Remove the current custom sound?").
				Value(&fm.ClearSound),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateSoundPath(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}
	if err := sounds.ValidateName(p); err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot read %s", p)
	}
	return nil
}
