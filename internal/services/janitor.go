package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/storage"
)

// AttachmentJanitor sweeps the upload directory for files no
// attachment row references anymore. Such orphans appear when an edit
// session uploads a file and the client crashes before its
// compensating delete, or when a record delete loses its file removal.
type AttachmentJanitor struct {
	storage     storage.Storage
	attachments *repository.AttachmentRepository
	interval    time.Duration
	minAge      time.Duration
	logger      *logrus.Logger

	wg   sync.WaitGroup
	stop chan struct{}
}

func NewAttachmentJanitor(
	store storage.Storage,
	attachments *repository.AttachmentRepository,
	interval time.Duration,
	minAge time.Duration,
	logger *logrus.Logger,
) *AttachmentJanitor {
	j := &AttachmentJanitor{
		storage:     store,
		attachments: attachments,
		interval:    interval,
		minAge:      minAge,
		logger:      logger,
		stop:        make(chan struct{}),
	}

	j.wg.Add(1)
	go j.loop()

	return j
}

func (j *AttachmentJanitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.SweepOnce(context.Background())
		case <-j.stop:
			return
		}
	}
}

// SweepOnce removes every stored file older than minAge that no
// attachment row references. minAge keeps in-flight uploads safe.
func (j *AttachmentJanitor) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-j.minAge)

	paths, err := j.storage.ListOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.WithError(err).Warn("janitor: listing upload dir failed")
		return
	}

	removed := 0
	for _, path := range paths {
		referenced, err := j.attachments.PathExists(ctx, path)
		if err != nil {
			j.logger.WithError(err).WithField("path", path).Warn("janitor: reference check failed")
			continue
		}
		if referenced {
			continue
		}

		if err := j.storage.Remove(ctx, path); err != nil {
			j.logger.WithError(err).WithField("path", path).Warn("janitor: orphan removal failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("janitor: orphaned attachment files removed")
	}
}

// Shutdown stops the sweep loop, waiting up to ctx for the current
// sweep to finish.
func (j *AttachmentJanitor) Shutdown(ctx context.Context) {
	close(j.stop)

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		j.logger.Warn("janitor shutdown timed out")
	}
}
