package log

import (
	"time"

	"go.uber.org/zap"
)

// Field is the structured logging field type.
type Field = zap.Field

func String(key, value string) Field {
	return zap.String(key, value)
}

func Strings(key string, values []string) Field {
	return zap.Strings(key, values)
}

func Int(key string, value int) Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) Field {
	return zap.Int64(key, value)
}

func Uint(key string, value uint) Field {
	return zap.Uint(key, value)
}

func Float64(key string, value float64) Field {
	return zap.Float64(key, value)
}

func Bool(key string, value bool) Field {
	return zap.Bool(key, value)
}

func Duration(key string, value time.Duration) Field {
	return zap.Duration(key, value)
}

func Time(key string, value time.Time) Field {
	return zap.Time(key, value)
}

func Any(key string, value any) Field {
	return zap.Any(key, value)
}

// Cause records the error that caused the log entry.
func Cause(err error) Field {
	return zap.Error(err)
}
