package thumbs

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/metrics"
	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/storage"
)

// ErrQueueFull is returned when the job queue is at capacity.
var ErrQueueFull = errors.New("thumbnail queue full")

// FileStore is the metadata lookup the workers need.
type FileStore interface {
	GetFileOwned(ctx context.Context, ownerID, id string) (*models.FileNode, error)
}

// Pool is a channel-fed worker pool implementing Dispatcher. Re-running a
// job for the same file is safe: variants are overwritten in place.
type Pool struct {
	store   FileStore
	blobs   storage.Backend
	queue   chan Job
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	workers int
}

// NewPool creates a thumbnail worker pool.
func NewPool(store FileStore, blobs storage.Backend, workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		store:   store,
		blobs:   blobs,
		queue:   make(chan Job, 1000),
		workers: workers,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	logging.Info("thumbnail pool started", zap.Int("workers", p.workers))
}

// Stop signals workers to stop and waits for them to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	close(p.queue)
	p.wg.Wait()
	logging.Info("thumbnail pool stopped")
}

// Enqueue adds a job to the queue without blocking.
func (p *Pool) Enqueue(_ context.Context, job Job) error {
	select {
	case p.queue <- job:
		metrics.SetThumbnailQueueDepth(len(p.queue))
		return nil
	default:
		metrics.RecordThumbnailJob("dropped")
		return ErrQueueFull
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			metrics.SetThumbnailQueueDepth(len(p.queue))
			p.process(ctx, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	node, err := p.store.GetFileOwned(ctx, job.UserID, job.FileID)
	if err != nil {
		logging.Warn("thumbs: file lookup failed",
			zap.String("file_id", job.FileID), zap.Error(err))
		metrics.RecordThumbnailJob("failed")
		return
	}
	if node == nil || node.Type != models.TypeImage || node.LocalPath == "" {
		logging.Warn("thumbs: job does not reference a stored image",
			zap.String("file_id", job.FileID))
		metrics.RecordThumbnailJob("skipped")
		return
	}

	data, err := p.blobs.Read(ctx, node.LocalPath)
	if err != nil {
		logging.Warn("thumbs: failed to read original",
			zap.String("file_id", job.FileID), zap.Error(err))
		metrics.RecordThumbnailJob("failed")
		return
	}

	variants, err := GenerateVariants(data, node.Name)
	if err != nil {
		logging.Warn("thumbs: generation failed",
			zap.String("file_id", job.FileID), zap.Error(err))
		metrics.RecordThumbnailJob("failed")
		return
	}

	for size, variant := range variants {
		if err := p.blobs.StoreAt(ctx, VariantLocator(node.LocalPath, size), variant); err != nil {
			logging.Warn("thumbs: failed to store variant",
				zap.String("file_id", job.FileID),
				zap.Int("size", size), zap.Error(err))
			metrics.RecordThumbnailJob("failed")
			return
		}
	}

	metrics.RecordThumbnailJob("success")
	logging.Debug("thumbs: variants generated",
		zap.String("file_id", job.FileID),
		zap.Int("count", len(variants)))
}
