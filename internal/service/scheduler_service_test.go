package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec(17, 45)
	require.NoError(t, err)
	assert.Equal(t, "0 45 17 * * *", spec)

	_, err = buildDailySpec(24, 0)
	assert.Error(t, err)
	_, err = buildDailySpec(0, 60)
	assert.Error(t, err)
}

func TestSchedulerService_NextFiringInZone(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)

	s := NewSchedulerService(loc, zerolog.Nop())
	id, err := s.ScheduleDaily(17, 45, time.Minute, func(context.Context) {})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next(id).In(loc)
	require.False(t, next.IsZero())
	assert.Equal(t, 17, next.Hour())
	assert.Equal(t, 45, next.Minute())
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Sub(time.Now()) <= 24*time.Hour)
}

func TestSchedulerService_RejectsBadTime(t *testing.T) {
	s := NewSchedulerService(time.UTC, zerolog.Nop())
	_, err := s.ScheduleDaily(-1, 0, time.Minute, func(context.Context) {})
	assert.Error(t, err)
}
