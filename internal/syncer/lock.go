package syncer

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/unclealex/devicesync/internal/utils"
)

var ErrSyncAlreadyRunning = errors.New("syncer: another sync is running")

type runLock struct {
	flock *flock.Flock
}

func newRunLock(path string) *runLock {
	return &runLock{flock: flock.New(path)}
}

func (l *runLock) acquire() error {
	if err := utils.EnsureParent(l.flock.Path()); err != nil {
		return fmt.Errorf("syncer: lock: %w", err)
	}
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("syncer: lock: %w", err)
	}
	if !locked {
		return ErrSyncAlreadyRunning
	}
	return nil
}

func (l *runLock) release() {
	if l.flock.Locked() {
		l.flock.Unlock()
	}
}
