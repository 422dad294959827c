// Package fixture reads users and feedback from YAML files for import.
package fixture

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/store"
)

type mealYAML struct {
	Rating      *int       `yaml:"rating"`
	Comment     string     `yaml:"comment"`
	SubmittedAt *time.Time `yaml:"submittedAt"`
}

type recordYAML struct {
	Date  string              `yaml:"date"`
	User  string              `yaml:"user"`
	Meals map[string]mealYAML `yaml:"meals"`
}

type fileYAML struct {
	Users    []store.User `yaml:"users"`
	Feedback []recordYAML `yaml:"feedback"`
}

// Fixture is the parsed content of a fixture file.
type Fixture struct {
	Users   []store.User
	Records []feedback.Record
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes fixture YAML. Dates must be YYYY-MM-DD, meal keys must be
// known slots and ratings must lie in 1..5.
func Parse(data []byte) (*Fixture, error) {
	var raw fileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	fx := &Fixture{Users: raw.Users}
	for i, u := range raw.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("users[%d]: missing id", i)
		}
	}

	for i, r := range raw.Feedback {
		if r.User == "" {
			return nil, fmt.Errorf("feedback[%d]: missing user", i)
		}
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("feedback[%d]: invalid date %q", i, r.Date)
		}
		rec := feedback.Record{Date: date, User: r.User, Meals: make(map[feedback.MealSlot]*feedback.MealEntry, len(r.Meals))}
		for name, m := range r.Meals {
			slot, ok := feedback.ParseMealSlot(name)
			if !ok {
				return nil, fmt.Errorf("feedback[%d]: unknown meal slot %q", i, name)
			}
			rec.Meals[slot] = &feedback.MealEntry{Rating: m.Rating, Comment: m.Comment, SubmittedAt: m.SubmittedAt}
		}
		fx.Records = append(fx.Records, rec)
	}

	if err := feedback.Validate(fx.Records); err != nil {
		return nil, err
	}
	return fx, nil
}
