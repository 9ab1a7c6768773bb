package rankings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekBounds_MidWeek(t *testing.T) {
	// Wednesday 2026-08-05
	now := time.Date(2026, 8, 5, 15, 30, 0, 0, time.UTC)
	start, end := WeekBounds(now)
	require.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), start) // Monday
	require.Equal(t, time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC), end)   // Sunday
}

func TestWeekBounds_Monday(t *testing.T) {
	now := time.Date(2026, 8, 3, 0, 0, 1, 0, time.UTC)
	start, _ := WeekBounds(now)
	require.Equal(t, now.Truncate(24*time.Hour), start)
}

func TestWeekBounds_SundayWrapsToPriorMonday(t *testing.T) {
	// Sunday 2026-08-09 belongs to the week starting Monday 2026-08-03.
	now := time.Date(2026, 8, 9, 23, 0, 0, 0, time.UTC)
	start, end := WeekBounds(now)
	require.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC), end)
}

func TestWeekBounds_NonUTCInputIsNormalized(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2026, 8, 5, 2, 0, 0, 0, loc) // 2026-08-04 17:00 UTC, a Tuesday
	start, end := WeekBounds(now)
	require.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC), end)
}

func TestDenseRanks_Empty(t *testing.T) {
	require.Equal(t, []int{}, denseRanks(0, func(i, j int) bool { return true }))
}

func TestDenseRanks_AllDistinct(t *testing.T) {
	equal := func(i, j int) bool { return false }
	require.Equal(t, []int{1, 2, 3, 4}, denseRanks(4, equal))
}

func TestDenseRanks_LeadingTieSharesRankAndLeavesNoGap(t *testing.T) {
	// values (sorted desc): 100, 100, 80, 50, 50, 50 -> ranks 1,1,2,3,3,3
	values := []int{100, 100, 80, 50, 50, 50}
	equal := func(i, j int) bool { return values[i] == values[j] }
	require.Equal(t, []int{1, 1, 2, 3, 3, 3}, denseRanks(len(values), equal))
}

func TestDenseRanks_SingleElement(t *testing.T) {
	require.Equal(t, []int{1}, denseRanks(1, func(i, j int) bool { return true }))
}
