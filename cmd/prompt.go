package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/harrisonrobin/floaat/pkg/model"
)

func notEmpty(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}

func promptKeys(togglKey, floatKey *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Toggl API token").
				Description("Profile settings on track.toggl.com").
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty).
				Value(togglKey),
			huh.NewInput().
				Title("Float API key").
				Description("Account settings > Integrations on float.com").
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty).
				Value(floatKey),
		),
	).Run()
}

func pickPerson(people []model.Person) (int64, error) {
	options := make([]huh.Option[int64], 0, len(people))
	for _, p := range people {
		label := p.Name
		if p.Email != "" {
			label = fmt.Sprintf("%s <%s>", p.Name, p.Email)
		}
		options = append(options, huh.NewOption(label, p.ID))
	}

	var id int64
	err := huh.NewSelect[int64]().
		Title("Which Float account is yours?").
		Options(options...).
		Value(&id).
		Run()
	return id, err
}

func pickDate(dates []model.Date) (model.Date, error) {
	options := make([]huh.Option[model.Date], 0, len(dates))
	for _, d := range dates {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", d, d.Weekday()), d))
	}

	var d model.Date
	err := huh.NewSelect[model.Date]().
		Title("Which day should be backfilled?").
		Options(options...).
		Value(&d).
		Run()
	return d, err
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
