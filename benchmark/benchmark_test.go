package benchmark_test

import (
	"bytes"
	"testing"

	"go.uber.org/zap"

	"example.com/rvlock/benchmark"
)

func TestRunContention(t *testing.T) {
	tests := []struct {
		name         string
		numGoroutine int
		numAcquire   int
	}{
		{name: "Single goroutine", numGoroutine: 1, numAcquire: 100},
		{name: "Two goroutines", numGoroutine: 2, numAcquire: 500},
		{name: "Eight goroutines", numGoroutine: 8, numAcquire: 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := benchmark.RunContention(zap.NewNop(), tt.numGoroutine, tt.numAcquire)
			if err != nil {
				t.Fatalf("RunContention failed: %v", err)
			}
			want := uint64(tt.numGoroutine * tt.numAcquire)
			if res.Counter != want {
				t.Errorf("counter = %d, want %d", res.Counter, want)
			}
			if n := res.AcquireNs.TotalCount(); n != int64(want) {
				t.Errorf("recorded %d acquisitions, want %d", n, want)
			}
			if tt.numGoroutine == 1 && res.Retries.Max() != 1 {
				t.Errorf("uncontended run retried: max = %d", res.Retries.Max()-1)
			}

			var buf bytes.Buffer
			err = res.Print(&buf)
			if err != nil {
				t.Fatalf("Print failed: %v", err)
			}
			if buf.Len() == 0 {
				t.Errorf("Print wrote nothing")
			}
		})
	}
}

func TestRunContentionInvalidSize(t *testing.T) {
	_, err := benchmark.RunContention(zap.NewNop(), 0, 10)
	if err == nil {
		t.Errorf("RunContention accepted zero goroutines")
	}
}
