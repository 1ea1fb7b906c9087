package benchmark

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"example.com/rvlock/core/spinlock"
)

const (
	maxLatencyNs = 10_000_000_000
	maxRetries   = 1_000_000_000
)

// Result aggregates the per-goroutine histograms of a benchmark run.
type Result struct {
	Counter   uint64
	Elapsed   time.Duration
	AcquireNs *hdrhistogram.Histogram
	Retries   *hdrhistogram.Histogram
}

func newHistograms() (*hdrhistogram.Histogram, *hdrhistogram.Histogram) {
	return hdrhistogram.New(1, maxLatencyNs, 3), hdrhistogram.New(1, maxRetries, 3)
}

// RunContention has numGoroutine goroutines each perform numAcquirePerGoroutine
// acquire/increment/release cycles on one spinlock, recording how long every
// acquisition took and how often it had to retry.
func RunContention(log *zap.Logger, numGoroutine, numAcquirePerGoroutine int) (Result, error) {
	if numGoroutine <= 0 || numAcquirePerGoroutine <= 0 {
		return Result{}, fmt.Errorf("invalid benchmark size: %d x %d",
			numGoroutine, numAcquirePerGoroutine)
	}

	var l spinlock.Spinlock
	var counter uint64

	res := Result{}
	res.AcquireNs, res.Retries = newHistograms()

	var mu sync.Mutex
	var errs []error
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numGoroutine)
	for i := numGoroutine; i > 0; i-- {
		go func() {
			defer wg.Done()
			hgAcquire, hgRetries := newHistograms()
			var err error
			<-sg
			for j := numAcquirePerGoroutine; j > 0; j-- {
				t0 := time.Now()
				retries := l.Acquire()
				d := time.Since(t0)
				counter++
				l.Release()

				// Histograms start at 1, so record the values offset by one.
				err = hgAcquire.RecordValue(d.Nanoseconds() + 1)
				if err != nil {
					break
				}
				err = hgRetries.RecordValue(int64(retries) + 1)
				if err != nil {
					break
				}
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			res.AcquireNs.Merge(hgAcquire)
			res.Retries.Merge(hgRetries)
		}()
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	res.Elapsed = time.Since(t0)
	res.Counter = counter

	if len(errs) != 0 {
		return res, fmt.Errorf("failed to record histogram value: %w", errs[0])
	}
	want := uint64(numGoroutine) * uint64(numAcquirePerGoroutine)
	if res.Counter != want {
		return res, fmt.Errorf("lost updates: counter = %d, want %d", res.Counter, want)
	}
	log.Info("contention benchmark finished",
		zap.Int("goroutines", numGoroutine),
		zap.Int("acquisitions per goroutine", numAcquirePerGoroutine),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int64("p50 acquire ns", res.AcquireNs.ValueAtQuantile(50)-1),
		zap.Int64("p99 acquire ns", res.AcquireNs.ValueAtQuantile(99)-1),
		zap.Int64("max retries", res.Retries.Max()-1),
	)
	return res, nil
}

// Print writes the percentile distributions of r to w.
func (r Result) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Acquire latency (ns, offset by 1):\n")
	if err != nil {
		return err
	}
	_, err = r.AcquireNs.PercentilesPrint(w, 1, 1.0)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Retries per acquisition (offset by 1):\n")
	if err != nil {
		return err
	}
	_, err = r.Retries.PercentilesPrint(w, 1, 1.0)
	return err
}
