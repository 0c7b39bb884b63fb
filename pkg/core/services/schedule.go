package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// NextScheduledRun returns the first occurrence of rule strictly after after.
// The rule is anchored at the start of after's day, so BYHOUR/BYMINUTE pick the time of day.
func NextScheduledRun(rule string, after time.Time) (time.Time, error) {
	r, err := anchoredRule(rule, after)
	if err != nil {
		return time.Time{}, err
	}
	return nextOccurrence(r, rule, after)
}

func anchoredRule(rule string, start time.Time) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}
	y, m, d := start.Date()
	r.DTStart(time.Date(y, m, d, 0, 0, 0, 0, start.Location()))
	return r, nil
}

func nextOccurrence(r *rrule.RRule, rule string, after time.Time) (time.Time, error) {
	next := r.After(after, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("rrule %q has no occurrences after %s", rule, after.Format(time.RFC3339))
	}
	return next, nil
}

// Scheduler runs a job at each occurrence of an rrule until its context is cancelled
type Scheduler struct {
	Rule   string
	Job    func(ctx context.Context) error
	Logger *zap.Logger

	now  func() time.Time
	wait func(d time.Duration) <-chan time.Time
}

// NewScheduler validates rule and creates a Scheduler for job
func NewScheduler(rule string, job func(ctx context.Context) error, logger *zap.Logger) (*Scheduler, error) {
	if _, err := rrule.StrToRRule(rule); err != nil {
		return nil, fmt.Errorf("invalid schedule rrule: %w", err)
	}
	return &Scheduler{Rule: rule, Job: job, Logger: logger, now: time.Now, wait: time.After}, nil
}

// Run blocks until ctx is done or the rule has no further occurrences.
// The rule is anchored once at the start of the day Run is called, so COUNT and
// UNTIL are measured from there. Job errors are logged and do not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	r, err := anchoredRule(s.Rule, s.now())
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.now()
		next, err := nextOccurrence(r, s.Rule, now)
		if err != nil {
			s.Logger.Info("Schedule exhausted", zap.Error(err))
			return nil
		}
		s.Logger.Info("Next scheduled optimization", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wait(next.Sub(now)):
		}

		if err := s.Job(ctx); err != nil {
			s.Logger.Error("Scheduled optimization failed", zap.Error(err))
		}
	}
}
