package report

import "sync"

// folderLocks provides per-mineral-folder mutual exclusion so concurrent
// report requests for the same folder cannot interleave their file writes
// and build invocations. Locks are created on first use and never removed;
// the catalog is small and folder keys are stable.
type folderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFolderLocks() *folderLocks {
	return &folderLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given folder path and returns its release
// function.
func (l *folderLocks) acquire(folder string) func() {
	l.mu.Lock()
	m, ok := l.locks[folder]
	if !ok {
		m = &sync.Mutex{}
		l.locks[folder] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
