package usecase

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/internal/metrics"
)

// SideEffects collects failures of secondary effects that run after a
// primary write has committed. Failures are reported, never rolled back.
type SideEffects struct {
	logger   *zap.Logger
	warnings []string
}

func NewSideEffects(logger *zap.Logger) *SideEffects {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SideEffects{logger: logger}
}

// Record notes the outcome of effect and reports whether it succeeded.
func (s *SideEffects) Record(effect string, err error) bool {
	if err == nil {
		return true
	}
	metrics.SecondaryEffectFailures.WithLabelValues(effect).Inc()
	s.logger.Warn("secondary effect failed", zap.String("effect", effect), zap.Error(err))
	s.warnings = append(s.warnings, fmt.Sprintf("%s failed: %v", effect, err))
	return false
}

func (s *SideEffects) Warnings() []string {
	return s.warnings
}
