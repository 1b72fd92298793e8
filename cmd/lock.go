package cmd

import (
	"github.com/gofrs/flock"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
)

var instanceLock *flock.Flock

// AcquireLock takes the single-instance lock. It reports false when another
// process already holds it.
func AcquireLock() (bool, error) {
	instanceLock = flock.New(config.GetLockPath())
	return instanceLock.TryLock()
}

// ReleaseLock drops the single-instance lock if held.
func ReleaseLock() {
	if instanceLock != nil {
		_ = instanceLock.Unlock()
		instanceLock = nil
	}
}
