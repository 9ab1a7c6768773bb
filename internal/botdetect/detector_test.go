package botdetect

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/domain"
)

func TestGrowthRate(t *testing.T) {
	require.Equal(t, 0.0, growthRate(0, 0))
	require.True(t, math.IsInf(growthRate(0, 5), 1))
	require.InDelta(t, 100.0, growthRate(10, 20), 0.0001)
	require.InDelta(t, -50.0, growthRate(20, 10), 0.0001)
}

func entry(views, likes, comments int64, at time.Time) domain.StatsHistoryEntry {
	return domain.StatsHistoryEntry{Views: views, Likes: likes, Comments: comments, RecordedAt: at}
}

func TestDetect_ShortHistoryNeverAnomalous(t *testing.T) {
	d := New()

	result := d.Detect(domain.PlatformTikTok, nil)
	require.Equal(t, domain.BotDetectionResult{HasAnomalies: false, Flags: nil, ConfidenceScore: 0}, result)

	one := []domain.StatsHistoryEntry{entry(1000, 10, 1, time.Now())}
	result = d.Detect(domain.PlatformTikTok, one)
	require.False(t, result.HasAnomalies)
}

func TestDetect_LengthFourNeverTriggersVelocityOrZeroVariance(t *testing.T) {
	d := New()
	now := time.Now()

	history := []domain.StatsHistoryEntry{
		entry(5000, 50, 5, now),
		entry(4000, 40, 4, now.Add(-time.Hour)),
		entry(3000, 30, 3, now.Add(-2*time.Hour)),
		entry(2000, 20, 2, now.Add(-3*time.Hour)),
	}

	result := d.Detect(domain.PlatformTikTok, history)
	for _, f := range result.Flags {
		require.NotEqual(t, domain.FlagVelocityAnomaly, f.Type)
		require.NotEqual(t, domain.FlagZeroVariance, f.Type)
	}
}

func TestDetect_ViewsSpike(t *testing.T) {
	d := New()
	now := time.Now()

	history := []domain.StatsHistoryEntry{
		entry(12000, 20, 0, now),
		entry(1000, 15, 0, now.Add(-time.Hour)),
	}

	result := d.Detect(domain.PlatformTikTok, history)
	require.True(t, result.HasAnomalies)
	require.Len(t, result.Flags, 1)
	require.Equal(t, domain.FlagViewsSpike, result.Flags[0].Type)
	require.Equal(t, domain.SeverityHigh, result.Flags[0].Severity)
	require.Equal(t, 90, result.Flags[0].Confidence)
	require.Equal(t, 90, result.ConfidenceScore)
}

func TestDetect_NoAnomaliesOnSteadyGrowth(t *testing.T) {
	d := New()
	now := time.Now()

	history := []domain.StatsHistoryEntry{
		entry(1100, 55, 5, now),
		entry(1050, 52, 5, now.Add(-time.Hour)),
		entry(1000, 50, 4, now.Add(-2*time.Hour)),
	}

	result := d.Detect(domain.PlatformTikTok, history)
	require.False(t, result.HasAnomalies)
	require.Equal(t, 0, result.ConfidenceScore)
}

func TestZeroVarianceRule_NearLinearGrowthFlagsHigh(t *testing.T) {
	now := time.Now()
	// Newest-first geometric series growing ~25% per step: a near-constant
	// growth-rate, i.e. a low coefficient of variation.
	oldestFirst := []int64{1000, 1250, 1563, 1954, 2441, 3052, 3815}
	var history []domain.StatsHistoryEntry
	for i := 0; i < len(oldestFirst); i++ {
		views := oldestFirst[len(oldestFirst)-1-i]
		history = append(history, entry(views, 10, 1, now.Add(-time.Duration(i)*time.Hour)))
	}

	flag := zeroVarianceRule(platformThresholds{}, history)
	require.NotNil(t, flag)
	require.Equal(t, domain.FlagZeroVariance, flag.Type)
	require.Equal(t, domain.SeverityHigh, flag.Severity)
}

func TestZeroVarianceRule_TenPercentGrowthAboveMinViewsFlagsHigh(t *testing.T) {
	now := time.Now()
	// Newest-first, each step ~10% below the one after it.
	newestFirst := []int64{2200, 2000, 1818, 1653, 1503, 1367}
	var history []domain.StatsHistoryEntry
	for i, views := range newestFirst {
		history = append(history, entry(views, 10, 1, now.Add(-time.Duration(i)*time.Hour)))
	}

	flag := zeroVarianceRule(thresholdsFor(domain.PlatformYouTube), history)
	require.NotNil(t, flag)
	require.Equal(t, domain.FlagZeroVariance, flag.Type)
	require.Equal(t, domain.SeverityHigh, flag.Severity)
	require.Equal(t, 95, flag.Confidence)
}

func TestDetect_SpecScenarioThreeTenPercentGrowthIsZeroVariance(t *testing.T) {
	d := New()
	now := time.Now()

	newestFirst := []int64{2200, 2000, 1818, 1653, 1503, 1367}
	var history []domain.StatsHistoryEntry
	for i, views := range newestFirst {
		history = append(history, entry(views, 10, 1, now.Add(-time.Duration(i)*time.Hour)))
	}

	result := d.Detect(domain.PlatformYouTube, history)
	require.True(t, result.HasAnomalies)
	require.Equal(t, domain.FlagZeroVariance, result.Flags[0].Type)
	require.Equal(t, domain.SeverityHigh, result.Flags[0].Severity)
	require.Equal(t, 95, result.ConfidenceScore)
}

func TestSuddenStopRule_RequiresTwelveSamples(t *testing.T) {
	now := time.Now()
	short := make([]domain.StatsHistoryEntry, 11)
	for i := range short {
		short[i] = entry(int64(1000*(11-i)), 10, 1, now.Add(-time.Duration(i)*time.Hour))
	}
	require.Nil(t, suddenStopRule(platformThresholds{}, short))
}

func TestSuddenStopRule_FlagsAbruptHalt(t *testing.T) {
	now := time.Now()
	var history []domain.StatsHistoryEntry
	// recent window (indices 0-5): flat, no growth
	flatViews := int64(50000)
	for i := 0; i < 6; i++ {
		history = append(history, entry(flatViews, 100, 10, now.Add(-time.Duration(i)*time.Hour)))
	}
	// previous window (indices 6-11): strong growth
	growingViews := int64(50000)
	for i := 6; i < 12; i++ {
		history = append(history, entry(growingViews, 100, 10, now.Add(-time.Duration(i)*time.Hour)))
		growingViews -= 2000
	}

	flag := suddenStopRule(platformThresholds{}, history)
	require.NotNil(t, flag)
	require.Equal(t, domain.FlagSuddenStop, flag.Type)
}

func TestTimePatternRule_RequiresTwentyFourSamples(t *testing.T) {
	now := time.Now()
	short := make([]domain.StatsHistoryEntry, 23)
	for i := range short {
		short[i] = entry(int64(1000+i*10), 10, 1, now.Add(-time.Duration(i)*time.Hour))
	}
	require.Nil(t, timePatternRule(platformThresholds{}, short))
}

func TestTimePatternRule_ExactlyTwentyFourMayFire(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	history := make([]domain.StatsHistoryEntry, 24)
	views := int64(100000)
	for i := 0; i < 24; i++ {
		// concentrate nearly all growth into hour 3 (index from the end)
		history[i] = entry(views, 10, 1, base.Add(-time.Duration(i)*time.Hour))
		if i < 23 {
			at := base.Add(-time.Duration(i) * time.Hour)
			if at.Hour() == 3 {
				views -= 20000
			} else {
				views -= 10
			}
		}
	}

	flag := timePatternRule(platformThresholds{}, history)
	require.NotNil(t, flag)
	require.Equal(t, domain.FlagTimePattern, flag.Type)
}

func TestMeanConfidence_EmptyIsZero(t *testing.T) {
	require.Equal(t, 0, meanConfidence(nil))
}

func TestMeanConfidence_Averages(t *testing.T) {
	flags := []domain.BotFlag{{Confidence: 80}, {Confidence: 60}}
	require.Equal(t, 70, meanConfidence(flags))
}
