package spinlock_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"example.com/rvlock/core/spinlock"
)

func TestZeroValueUnlocked(t *testing.T) {
	var l spinlock.Spinlock
	if l.Locked() {
		t.Fatalf("fresh spinlock is locked")
	}
}

func TestAcquireRelease(t *testing.T) {
	var l spinlock.Spinlock
	retries := l.Acquire()
	if retries != 0 {
		t.Errorf("uncontended Acquire retried %d times", retries)
	}
	if !l.Locked() {
		t.Errorf("spinlock not locked after Acquire")
	}
	if l.TryAcquire() {
		t.Errorf("TryAcquire succeeded on a held spinlock")
	}
	l.Release()
	if l.Locked() {
		t.Errorf("spinlock locked after Release")
	}
	if !l.TryAcquire() {
		t.Errorf("TryAcquire failed on a free spinlock")
	}
	l.Release()
}

func TestReleaseWithoutAcquirePanics(t *testing.T) {
	tests := []struct {
		name    string
		acquire bool
	}{
		{name: "Never acquired", acquire: false},
		{name: "Double release", acquire: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l spinlock.Spinlock
			if tt.acquire {
				l.Acquire()
				l.Release()
			}
			defer func() {
				if recover() == nil {
					t.Errorf("Release did not panic")
				}
				if l.Locked() {
					t.Errorf("misuse left the spinlock locked")
				}
			}()
			l.Release()
		})
	}
}

// Both contenders make their first attempt on a free lock. The winner holds
// the lock until the loser has observed failure, so the loser must retry.
func TestRaceFirstAttempt(t *testing.T) {
	const numRuns = 100
	for i := 0; i != numRuns; i++ {
		var l spinlock.Spinlock
		var wins atomic.Int32
		var retries [2]int
		attempted := make(chan struct{}, 2)
		sg := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)
		for j := 0; j != 2; j++ {
			j := j
			go func() {
				defer wg.Done()
				<-sg
				won := l.TryAcquire()
				attempted <- struct{}{}
				if won {
					wins.Add(1)
					<-attempted
					<-attempted
					l.Release()
					return
				}
				retries[j] = 1 + l.Acquire()
				l.Release()
			}()
		}
		close(sg)
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("run %d: %d contenders won the first attempt, want 1", i, wins.Load())
		}
		if retries[0]+retries[1] < 1 {
			t.Fatalf("run %d: loser did not retry", i)
		}
		if l.Locked() {
			t.Fatalf("run %d: spinlock locked after both releases", i)
		}
	}
}

func TestMutualExclusion(t *testing.T) {
	tests := []struct {
		name        string
		contenders  int
		activations int
	}{
		{name: "Two contenders", contenders: 2, activations: 1000},
		{name: "Four contenders", contenders: 4, activations: 1000},
		{name: "Many contenders", contenders: 4 * runtime.GOMAXPROCS(0), activations: 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l spinlock.Spinlock
			var inside atomic.Int32
			var violations atomic.Int32
			counter := 0
			sg := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(tt.contenders)
			for i := 0; i != tt.contenders; i++ {
				go func() {
					defer wg.Done()
					<-sg
					for j := 0; j != tt.activations; j++ {
						l.Acquire()
						if inside.Add(1) != 1 {
							violations.Add(1)
						}
						counter++
						inside.Add(-1)
						l.Release()
					}
				}()
			}
			close(sg)
			wg.Wait()

			if violations.Load() != 0 {
				t.Errorf("%d activations overlapped another holder", violations.Load())
			}
			if want := tt.contenders * tt.activations; counter != want {
				t.Errorf("counter = %d, want %d", counter, want)
			}
		})
	}
}

func BenchmarkUncontended(b *testing.B) {
	var l spinlock.Spinlock
	for i := 0; i < b.N; i++ {
		l.Acquire()
		l.Release()
	}
}

func BenchmarkContended(b *testing.B) {
	var l spinlock.Spinlock
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Acquire()
			l.Release()
		}
	})
}
