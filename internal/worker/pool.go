package worker

import (
	"context"
	"sync"

	"email-report-pipeline/internal/logger"

	"github.com/rs/zerolog"
)

// Pool fans acquisition runs for independent clients over a fixed number of
// goroutines. Runs share no state; they only meet at the status log, whose
// per-key upserts keep concurrent writers for different clients independent.
type Pool struct {
	workerCount int
	jobChan     chan func(context.Context) error
	wg          sync.WaitGroup
	log         zerolog.Logger
}

func NewPool(workerCount int) *Pool {
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context) error, workerCount*2),
		log:         logger.Get(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	close(p.jobChan)
	p.wg.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

// Submit blocks until a worker frees up or the context ends. Acquisition runs
// last minutes, so dropping excess jobs would silently skip clients.
func (p *Pool) Submit(ctx context.Context, job func(context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobChan <- job:
		return nil
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Job execution failed")
			}
		}
	}
}
