package worker

import (
	"context"
	"log/slog"
	"sync"
)

// WorkingPool runs submitted jobs across a fixed set of worker goroutines.
// Used for batch pricing of the sample-vehicle catalogue.
//
// The job channel is owned by the producer: submit with SubmitJob, then
// call Close after the last submission. Workers never close the channel,
// so a late SubmitJob can never hit a closed channel.
type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob queues a job, failing instead of blocking once ctx is done.
func (p *WorkingPool) SubmitJob(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs. Must be called by the submitting side after
// the last SubmitJob; workers drain what was queued and exit.
func (p *WorkingPool) Close() {
	close(p.jobChan)
}

// Start runs the workers until the job channel is closed and drained, or
// ctx is cancelled, whichever comes first.
func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	workerWg.Wait()
	slog.Debug("Working pool stopped", "workers", p.NumWorkers)
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			p.safeExecution(ctx, job, id)
		case <-ctx.Done():
			// Exit immediately, even if the job channel is not closed.
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in pool job", "worker", workerID, "panic", r)
		}
	}()

	if err := job(ctx); err != nil {
		slog.Error("Pool job failed", "worker", workerID, "error", err)
	}
}
