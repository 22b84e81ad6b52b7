package inspector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	domain "github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/repository/state"
)

// Options controls the nextalarm-inspect invocation.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile optionally overrides the snapshot path from config.
	StateFile string
}

// Run prints a per-person report of the persisted snapshot.
func Run(ctx context.Context, out io.Writer, opts *Options) error {
	ctx = logger.WithName(ctx, "nextalarm-inspect")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	stateFile := cfg.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	repo := state.NewFileRepository(stateFile)

	persons, err := repo.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			fmt.Fprintln(out, "No snapshot found.")

			return nil
		}

		return fmt.Errorf("load snapshot: %w", err)
	}

	slugs := make([]string, 0, len(persons))
	for slug := range persons {
		slugs = append(slugs, slug)
	}

	sort.Strings(slugs)

	now := time.Now()

	for _, slug := range slugs {
		var stored domain.StoredPerson
		if err := json.Unmarshal(persons[slug], &stored); err != nil {
			logger.WarnKV(ctx, "Skipping unreadable person record", "slug", slug, "error", err)

			continue
		}

		personState, err := domain.PersonFromStored(slug, stored)
		if err != nil {
			logger.WarnKV(ctx, "Skipping unreadable person record", "slug", slug, "error", err)

			continue
		}

		printPerson(out, personState, now)
	}

	return nil
}

// printPerson renders one person's report.
func printPerson(out io.Writer, personState *domain.PersonState, now time.Time) {
	fmt.Fprintf(out, "%s (%s)\n", personState.Person, personState.Slug)

	switch {
	case personState.NextAlarmTime != nil:
		fmt.Fprintf(out, "  next alarm: %s at %s (%s)\n",
			personState.NextAlarmKey,
			domain.FormatTimePtr(personState.NextAlarmTime),
			domain.DescribeTimeUntil(personState.NextAlarmTime, now))
	case personState.Note != "":
		fmt.Fprintf(out, "  next alarm: none (%s)\n", personState.Note)
	default:
		fmt.Fprintln(out, "  next alarm: none")
	}

	if personState.PreviousAlarmTime != nil {
		fmt.Fprintf(out, "  previous alarm: %s at %s\n",
			personState.PreviousAlarmKey, domain.FormatTimePtr(personState.PreviousAlarmTime))
	}

	if personState.RefreshProblem {
		fmt.Fprintln(out, "  refresh: PROBLEM (no data within timeout)")
	} else if personState.LastRefreshEnd != nil {
		fmt.Fprintf(out, "  refresh: ok, last data %s\n", domain.FormatTimePtr(personState.LastRefreshEnd))
	}

	for _, entry := range domain.BuildPreview(personState.NormalizedAlarms, personState.Schedule) {
		next := entry.Next
		if next == "" {
			next = "-"
		}

		fmt.Fprintf(out, "  alarm %s (%s): enabled=%t repeat=%t next=%s\n",
			entry.Key, entry.Label, entry.Enabled, entry.Repeat, next)
	}

	if len(personState.ParseErrors) > 0 {
		fmt.Fprintf(out, "  parse errors: %d\n", len(personState.ParseErrors))
	}
}
