package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/spf13/cobra"
)

// criteriaFlags binds search predicates to a command. Only flags the user
// actually set end up in the criteria.
type criteriaFlags struct {
	importance float64
	emotion    float64
	focus      string
	since      string
	until      string
	limit      int
}

func (f *criteriaFlags) register(cmd *cobra.Command, defaultLimit int) {
	cmd.Flags().Float64Var(&f.importance, "importance", 0, "minimum importance [0,1]")
	cmd.Flags().Float64Var(&f.emotion, "emotion", 0, "minimum emotion score [-1,1]")
	cmd.Flags().StringVar(&f.focus, "focus", "", "exact focus area")
	cmd.Flags().StringVar(&f.since, "since", "", "created on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "created on or before (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", defaultLimit, "maximum results, 0 for all")
}

// changed reports whether any predicate flag was set.
func (f *criteriaFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{"importance", "emotion", "focus", "since", "until", "limit"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (f *criteriaFlags) criteria(cmd *cobra.Command, query string) (core.SearchCriteria, error) {
	c := core.SearchCriteria{
		Query:     query,
		FocusArea: f.focus,
		Limit:     f.limit,
	}
	if cmd.Flags().Changed("importance") {
		v := f.importance
		c.ImportanceThreshold = &v
	}
	if cmd.Flags().Changed("emotion") {
		v := f.emotion
		c.EmotionThreshold = &v
	}

	var err error
	if c.StartDate, err = parseDay(f.since, false); err != nil {
		return c, err
	}
	if c.EndDate, err = parseDay(f.until, true); err != nil {
		return c, err
	}
	return c, nil
}

// parseDay reads a local calendar day. The end of range is the last instant of that day.
func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
