package report

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFolderLocksSerializeSameFolder(t *testing.T) {
	locks := newFolderLocks()

	var active, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire("/data/minerals/mineral.silicate.0xaaaaaa")
			defer release()

			if !atomic.CompareAndSwapInt32(&active, 0, 1) {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.StoreInt32(&active, 0)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps), "same-folder sections must never overlap")
}

func TestFolderLocksIndependentFolders(t *testing.T) {
	locks := newFolderLocks()

	releaseA := locks.acquire("/data/minerals/a")

	done := make(chan struct{})
	go func() {
		releaseB := locks.acquire("/data/minerals/b")
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("locking folder a must not block folder b")
	}
	releaseA()
}

func TestFolderLocksReuseSameMutex(t *testing.T) {
	locks := newFolderLocks()

	release := locks.acquire("/data/minerals/a")
	release()
	release = locks.acquire("/data/minerals/a")
	release()

	assert.Len(t, locks.locks, 1)
}
