package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-tracker/internal/service"
)

func TestScheduleDailyUpdateInvalidExpression(t *testing.T) {
	s := NewScheduler(nil, service.DefaultPolicy(), nil)
	err := s.ScheduleDailyUpdate("not a cron expr")
	assert.Error(t, err)
}

func TestScheduleDailyUpdateValidExpression(t *testing.T) {
	s := NewScheduler(nil, service.DefaultPolicy(), nil)
	require.NoError(t, s.ScheduleDailyUpdate("0 6 * * *"))
	assert.Len(t, s.jobIDs, 1)
}

func TestCannotScheduleWhileRunning(t *testing.T) {
	s := NewScheduler(nil, service.DefaultPolicy(), nil)
	s.Start()
	defer s.Stop()

	err := s.ScheduleDailyUpdate("0 6 * * *")
	assert.Error(t, err)
}

func TestStartStopIdempotent(t *testing.T) {
	s := NewScheduler(nil, service.DefaultPolicy(), nil)

	s.Start()
	s.Start()
	assert.True(t, s.isRunning)

	s.Stop()
	s.Stop()
	assert.False(t, s.isRunning)
}
