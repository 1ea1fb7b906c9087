// Package sched dispatches logical thread activations onto a critical
// section runner and drives the reference program around them.
package sched

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/rvlock/core/critsec"
)

// Plan describes which activations to run. Every label is activated Rounds
// times. When Concurrent is false the activations run back to back on the
// calling goroutine in round-major order (T1, T2, T1, T2, ...). When it is
// true every label gets its own goroutine and all of them are released at
// once, so acquisitions genuinely contend.
type Plan struct {
	Labels     []string
	Rounds     int
	Concurrent bool
}

// Activations returns the total number of activations in p.
func (p Plan) Activations() int {
	return len(p.Labels) * p.Rounds
}

// Dispatch runs the activations of p and returns how many were performed.
// Once ctx is done no further activations are started; an activation that
// is already waiting for the lock still completes.
func Dispatch(ctx context.Context, r *critsec.Runner, p Plan) int {
	if p.Rounds < 0 {
		panic("invalid number of rounds")
	}
	if !p.Concurrent {
		n := 0
		for i := 0; i != p.Rounds; i++ {
			for _, label := range p.Labels {
				if ctx.Err() != nil {
					return n
				}
				r.Run(label)
				n++
			}
		}
		return n
	}

	var mu sync.Mutex
	n := 0
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(len(p.Labels))
	for _, label := range p.Labels {
		go func(label string) {
			defer wg.Done()
			<-sg
			k := 0
			for i := 0; i != p.Rounds && ctx.Err() == nil; i++ {
				r.Run(label)
				k++
			}
			mu.Lock()
			defer mu.Unlock()
			n += k
		}(label)
	}
	close(sg)
	wg.Wait()
	return n
}

// Run is the reference program: a start indicator, the dispatched
// activations and a final summary line. It returns the final counter.
func Run(ctx context.Context, log *zap.Logger, r *critsec.Runner, out critsec.Sink, p Plan) uint32 {
	out.Putc('A')
	out.Puts("\nStarting threads\n")

	t0 := time.Now()
	n := Dispatch(ctx, r, p)
	v := r.Shared.Value()

	out.Puts("Final Counter = ")
	out.PutUint(uint64(v))
	out.Putc('\n')

	log.Info("threads finished",
		zap.Int("activations", n),
		zap.Uint32("counter", v),
		zap.Bool("concurrent", p.Concurrent),
		zap.Duration("elapsed", time.Since(t0)),
	)
	if int(v) != n {
		log.Error("shared counter does not match activations",
			zap.Int("activations", n), zap.Uint32("counter", v))
	}
	return v
}

// Heartbeat writes a '.' every interval until ctx is done.
func Heartbeat(ctx context.Context, out critsec.Sink, interval time.Duration) {
	if interval <= 0 {
		panic("invalid heartbeat interval")
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			out.Putc('.')
		}
	}
}
