package logbase

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerWidth = 30

func encodeCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	// See https://github.com/scionproto/scion/blob/master/pkg/log/log.go
	p := caller.TrimmedPath()
	if len(p) > callerWidth {
		p = "..." + p[len(p)-(callerWidth-3):]
	}
	enc.AppendString(fmt.Sprintf("%*s", callerWidth, p))
}

// Config returns the development configuration used by all commands.
func Config(verbose bool) zap.Config {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = encodeCaller
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return c
}

func New(verbose bool) (*zap.Logger, error) {
	return Config(verbose).Build()
}
