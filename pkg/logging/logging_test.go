package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestInitRebuildsLoggerForEveryLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "nonsense"} {
		Init(level)
		Debug("level applied", zap.String("level", level))
		Info("level applied", zap.String("level", level))
	}
	Init("info")
}
