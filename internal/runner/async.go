package runner

import (
	"context"
	"fmt"
)

// EventKind tells what an Event reports.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventFinished EventKind = "finished"
	EventFailed   EventKind = "failed"
)

// Event is a status update from an asynchronous run. Finished events carry
// the result of the run; failed events carry the error.
type Event struct {
	Kind     EventKind
	Message  string
	Backtest *BacktestResult
	Hyperopt *HyperoptResult
	Err      error
}

// BacktestAsync runs Backtest on a new goroutine. The channel receives a
// progress event, then exactly one finished or failed event, and is closed.
func (r *Runner) BacktestAsync(ctx context.Context, job Job) <-chan Event {
	return start(func(events chan<- Event) {
		events <- Event{Kind: EventProgress, Message: "Starting backtest..."}

		result, err := r.Backtest(ctx, job)
		if err != nil {
			events <- Event{Kind: EventFailed, Message: err.Error(), Err: err}

			return
		}

		events <- Event{Kind: EventFinished, Message: "Backtest completed!", Backtest: result}
	})
}

// HyperoptAsync runs Hyperopt on a new goroutine with the same event contract
// as BacktestAsync.
func (r *Runner) HyperoptAsync(ctx context.Context, job Job) <-chan Event {
	epochs := r.config.Epochs
	if job.Epochs > 0 {
		epochs = job.Epochs
	}

	return start(func(events chan<- Event) {
		events <- Event{Kind: EventProgress, Message: fmt.Sprintf("Starting hyperopt (%d epochs)...", epochs)}

		result, err := r.Hyperopt(ctx, job)
		if err != nil {
			events <- Event{Kind: EventFailed, Message: err.Error(), Err: err}

			return
		}

		events <- Event{Kind: EventFinished, Message: "Hyperopt completed!", Hyperopt: result}
	})
}

// start buffers every event a job can send so the goroutine never blocks on
// a consumer that stopped reading.
func start(job func(events chan<- Event)) <-chan Event {
	events := make(chan Event, 2)

	go func() {
		defer close(events)
		job(events)
	}()

	return events
}
