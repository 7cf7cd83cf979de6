package main

import (
	"fmt"
	"math"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lanewayhq/laneway/config"
	"github.com/lanewayhq/laneway/engine"
	"github.com/lanewayhq/laneway/observability"
)

// main wires a small demonstration Database (a letter-grade lookup, the
// same shape as the engine's own end-to-end test scenario) and launches
// the inspector against it. In a real deployment, replace buildDemoDatabase
// with whatever *engine.Database the host application already maintains.
func main() {
	cfg := config.DefaultConfig()
	cfg.ApplyEnvOverrides()

	var reporter engine.Reporter = observability.NewConsoleReporter(cfg.VerboseTrace)
	if cfg.SentryDSN != "" {
		sentryReporter, err := observability.NewSentryReporter(cfg.SentryDSN)
		if err != nil {
			fmt.Fprintln(os.Stderr, "laneway inspect:", err)
			os.Exit(1)
		}
		reporter = sentryReporter
	}
	db := buildDemoDatabase(reporter)

	p := tea.NewProgram(newModel(db), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "laneway inspect:", err)
		os.Exit(1)
	}
}

func buildDemoDatabase(reporter engine.Reporter) *engine.Database {
	db := engine.NewDatabase(engine.WithReporter(reporter))

	grades := engine.RegisterMapInput[string, float64](db, "grades", nil)
	letters := []string{"D", "C", "B", "A"}
	letter := engine.RegisterDerived(db, "letter", nil, func(ctx *engine.Context, name string) (string, error) {
		g, err := grades.Get(ctx, name)
		if err != nil {
			return "", err
		}
		idx := int(math.Round(g)) - 1 // round(g) is a one-based position in letters
		if idx < 0 {
			idx = 0
		}
		if idx >= len(letters) {
			idx = len(letters) - 1
		}
		return letters[idx], nil
	})

	grades.Set("Ada", 3.9)
	grades.Set("Grace", 3.1)
	grades.Set("Alan", 2.4)

	for _, name := range []string{"Ada", "Grace", "Alan"} {
		_, _ = letter.Call(name)
	}

	return db
}
