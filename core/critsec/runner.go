// Package critsec runs activations of logical threads through a critical
// section that increments a shared counter under a spinlock and reports
// progress through a character sink.
package critsec

import (
	"sync"

	"go.uber.org/zap"

	"example.com/rvlock/base/zaplog"

	"example.com/rvlock/core/spinlock"
)

// Sink is the character output used for trace lines.
type Sink interface {
	Putc(c byte)
	Puts(s string)
	PutUint(x uint64)
}

// Shared is the state all activations contend for. The counter may only be
// read or written by the holder of lock. The zero value is ready to use.
type Shared struct {
	lock    spinlock.Spinlock
	counter uint32
}

// Value returns the counter, taking the lock to read it.
func (sh *Shared) Value() uint32 {
	sh.lock.Acquire()
	v := sh.counter
	sh.lock.Release()
	return v
}

// Locked reports whether an activation currently holds the lock.
func (sh *Shared) Locked() bool {
	return sh.lock.Locked()
}

// Runner performs activations against Shared. Log defaults to the
// process-wide logger. A Runner must not be copied after first use.
type Runner struct {
	Log    *zap.Logger
	Shared *Shared
	Sink   Sink

	// Trace, if set, observes every state transition of every activation.
	// It runs on the activation's goroutine; a call with InSection happens
	// while the lock is held and one with Releasing happens before it is
	// released.
	Trace func(label string, s State)

	// out serialises whole trace lines. The exit line is written after the
	// spinlock is released and would otherwise interleave with the next
	// holder's lines.
	out sync.Mutex
}

func (r *Runner) enter(label string, s State) {
	if r.Trace != nil {
		r.Trace(label, s)
	}
}

func (r *Runner) line(label, text string) {
	r.out.Lock()
	defer r.out.Unlock()
	r.Sink.Puts(label)
	r.Sink.Puts(text)
}

func (r *Runner) counterLine(label string, v uint32) {
	r.out.Lock()
	defer r.out.Unlock()
	r.Sink.Puts(label)
	r.Sink.Puts(": Counter = ")
	r.Sink.PutUint(uint64(v))
	r.Sink.Putc('\n')
}

// Run performs one activation for the logical thread label and returns the
// counter value it produced.
func (r *Runner) Run(label string) uint32 {
	mtrcs := runnerMtrcs.Load()
	sh := r.Shared

	r.enter(label, Acquiring)
	retries := sh.lock.Acquire()
	mtrcs.acquisitions.Inc()
	mtrcs.retries.Add(float64(retries))

	r.enter(label, InSection)
	r.line(label, ": Enter critical section\n")
	sh.counter++
	v := sh.counter
	r.counterLine(label, v)
	mtrcs.entries.Inc()
	mtrcs.counter.Set(float64(v))

	r.enter(label, Releasing)
	sh.lock.Release()
	r.line(label, ": Exit critical section\n")

	r.enter(label, Idle)
	log := r.Log
	if log == nil {
		log = zaplog.Logger()
	}
	if ce := log.Check(zap.DebugLevel, "activation done"); ce != nil {
		ce.Write(zap.String("thread", label), zap.Uint32("counter", v), zap.Int("retries", retries))
	}
	return v
}
