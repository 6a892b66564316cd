package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/rediskit"
)

type ZapLogger struct{ L *zap.Logger }

var _ rediskit.Logger = ZapLogger{}

func (z ZapLogger) Debug(msg string, f rediskit.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f rediskit.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f rediskit.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f rediskit.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f rediskit.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
