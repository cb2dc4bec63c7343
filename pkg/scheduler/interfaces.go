package scheduler

//go:generate mockgen -destination=mock_scheduler.go -package=scheduler github.com/carverauto/whodis/pkg/scheduler Clock,Ticker,Job

import (
	"context"
	"time"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Job is the work a trigger firing executes; for whodis this is one
// ingestion cycle. The return value is the number of accepted sightings.
type Job interface {
	Run(ctx context.Context) (int, error)
}
