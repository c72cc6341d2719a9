package suggest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/smartsteps/internal/challenge"
	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

type SuggestCmd struct {
	List   SuggestListCmd   `cmd:"" default:"withargs" help:"List suggested habits."`
	Add    SuggestAddCmd    `cmd:"" help:"Start tracking a suggested habit."`
	Import SuggestImportCmd `cmd:"" help:"Import suggested habits from a YAML file."`
}

type SuggestListCmd struct {
	Query string `arg:"" optional:"" help:"Only show suggestions whose title or description contains this text."`
}

func (c *SuggestListCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	suggestions := t.SearchSuggested(c.Query)
	if len(suggestions) == 0 {
		ctx.Println("No suggestions found.")
		return nil
	}

	active := make(map[string]bool)
	for _, h := range t.Habits() {
		active[h.Title] = true
	}
	for _, s := range suggestions {
		mark := " "
		if active[s.Title] {
			mark = "✓"
		}
		ctx.Printf("%s %-12s %s %s  %s\n", mark, s.ID, s.Icon, s.Title, s.Desc)
	}
	return nil
}

type SuggestAddCmd struct {
	ID string `arg:"" help:"Suggestion id, as shown by 'suggest list'."`
}

func (c *SuggestAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	return addSuggested(ctx, t, c.ID)
}

func addSuggested(ctx *cli.Context, t *tracker.Tracker, id string) error {
	h, err := t.AddSuggested(id)
	if err != nil {
		if errors.Is(err, tracker.ErrSuggestedNotFound) {
			return fmt.Errorf("%w: %s", err, id)
		}
		return err
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (ID: %s)\n", cli.HabitLine(h), h.ID)
	return nil
}

// catalogFile is the YAML layout accepted by import: either a bare list of
// suggestions or a mapping with a "suggested" key.
type catalogFile struct {
	Suggested []models.SuggestedHabit `yaml:"suggested"`
}

// ParseCatalog decodes a suggested-habit catalog from YAML.
func ParseCatalog(data []byte) ([]models.SuggestedHabit, error) {
	var list []models.SuggestedHabit
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return file.Suggested, nil
}

type SuggestImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML file with id, title, desc and icon entries."`
}

func (c *SuggestImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	entries, err := ParseCatalog(data)
	if err != nil {
		return err
	}

	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	n := t.ImportSuggested(entries)
	if n == 0 {
		return fmt.Errorf("no valid suggestions in %s", c.File)
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	ctx.Printf("Imported %d of %d suggestion(s).\n", n, len(entries))
	return nil
}

// ChallengeCmd shows today's challenge and optionally starts tracking it.
type ChallengeCmd struct {
	Add bool `help:"Start tracking the challenge."`
}

func (c *ChallengeCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	s, ok := t.Challenge(challenge.Heuristic{})
	if !ok {
		ctx.Println("You are already tracking every suggestion. Nice work!")
		return nil
	}

	ctx.Printf("Reto del día: %s %s\n  %s\n", s.Icon, s.Title, s.Desc)
	if !c.Add {
		return nil
	}
	return addSuggested(ctx, t, s.ID)
}
