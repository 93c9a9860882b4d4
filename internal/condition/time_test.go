package condition

import (
	"context"
	"testing"
	"time"

	"tempo/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConditionEvaluate(t *testing.T) {
	office := InWindow(dailyWindow(t, 8, 17))

	value, err := office.WithClock(clock.NewMock(noon)).Evaluate(context.Background())
	require.NoError(t, err)
	assert.True(t, value)

	midnight := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	value, err = office.WithClock(clock.NewMock(midnight)).Evaluate(context.Background())
	require.NoError(t, err)
	assert.False(t, value)
}

func TestTimeConditionTracksMockClock(t *testing.T) {
	clk := clock.NewMock(noon)
	evening := InWindow(dailyWindow(t, 18, 20)).WithClock(clk)

	value, err := evening.Evaluate(context.Background())
	require.NoError(t, err)
	assert.False(t, value)

	clk.Advance(7 * time.Hour)
	value, err = evening.Evaluate(context.Background())
	require.NoError(t, err)
	assert.True(t, value)
}

func TestBetween(t *testing.T) {
	cond, err := Between(8, 30, 17, 0, time.UTC)
	require.NoError(t, err)

	value, err := cond.WithClock(clock.NewMock(noon)).Evaluate(context.Background())
	require.NoError(t, err)
	assert.True(t, value)

	_, err = Between(25, 0, 17, 0, time.UTC)
	assert.Error(t, err)
}

func TestTimeConditionCycleAgreesWithEvaluate(t *testing.T) {
	cond := InWindow(dailyWindow(t, 8, 17))

	instants := []time.Time{
		noon,
		time.Date(2026, 3, 4, 7, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC),
	}
	for _, instant := range instants {
		value, err := cond.WithClock(clock.NewMock(instant)).Evaluate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cond.Cycle().Contains(instant), value, "at %s", instant)
	}
}

func TestTimeConditionEstimate(t *testing.T) {
	cond := InWindow(dailyWindow(t, 14, 16))

	// Two hours before the window opens
	assert.Equal(t, 2*time.Hour, cond.EstimateNextChange(noon))

	// Inside the window the next occurrence has already started
	inside := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Duration(0), cond.EstimateNextChange(inside))

	// Past the window the estimate points at tomorrow's occurrence
	after := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 20*time.Hour, cond.EstimateNextChange(after))
}
