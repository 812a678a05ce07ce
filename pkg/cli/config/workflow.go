package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/usecase"
)

// Workflow holds CLI flags for negotiation timing
type Workflow struct {
	deadline         time.Duration
	reminderInterval time.Duration
	sweepInterval    time.Duration
}

func (x *Workflow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "decision-deadline",
			Usage:       "How long a community owner has to decide",
			Category:    "Workflow",
			Value:       usecase.DefaultDeadline,
			Sources:     cli.EnvVars("OSTRACON_DECISION_DEADLINE"),
			Destination: &x.deadline,
		},
		&cli.DurationFlag{
			Name:        "reminder-interval",
			Usage:       "Pause between owner reminders",
			Category:    "Workflow",
			Value:       usecase.DefaultReminderInterval,
			Sources:     cli.EnvVars("OSTRACON_REMINDER_INTERVAL"),
			Destination: &x.reminderInterval,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "How often pending requests are picked up",
			Category:    "Workflow",
			Value:       time.Minute,
			Sources:     cli.EnvVars("OSTRACON_SWEEP_INTERVAL"),
			Destination: &x.sweepInterval,
		},
	}
}

// Validate checks the configured durations
func (x *Workflow) Validate() error {
	if x.deadline <= 0 {
		return goerr.New("decision-deadline must be positive")
	}
	if x.reminderInterval <= 0 {
		return goerr.New("reminder-interval must be positive")
	}
	if x.reminderInterval >= x.deadline {
		return goerr.New("reminder-interval must be shorter than decision-deadline")
	}
	if x.sweepInterval <= 0 {
		return goerr.New("sweep-interval must be positive")
	}
	return nil
}

// Deadline returns the per-community negotiation deadline
func (x *Workflow) Deadline() time.Duration {
	return x.deadline
}

// ReminderInterval returns the owner reminder cadence
func (x *Workflow) ReminderInterval() time.Duration {
	return x.reminderInterval
}

// SweepInterval returns the request pickup interval
func (x *Workflow) SweepInterval() time.Duration {
	return x.sweepInterval
}
