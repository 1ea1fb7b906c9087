package zaplog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the process-wide logger, or a no-op logger if none has been
// published yet.
func Logger() *zap.Logger {
	l := logger.Load()
	if l == nil {
		return nop
	}
	return l
}

func SetLogger(l *zap.Logger) {
	if l == nil {
		panic("logger must not be nil")
	}
	logger.Store(l)
}
