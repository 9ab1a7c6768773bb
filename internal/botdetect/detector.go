// Package botdetect implements the nine-rule statistical bot detector:
// each rule inspects a clip's newest-first engagement history and may emit
// at most one flag, gated by its own minimum history length.
package botdetect

import (
	"math"

	"github.com/clipdeck/statistics-service/internal/domain"
)

// growthRate computes the percentage growth from prev to curr. A zero
// baseline with positive curr is treated as unbounded growth; a zero
// baseline with curr also zero is no growth at all.
func growthRate(prev, curr int64) float64 {
	if prev == 0 {
		if curr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (float64(curr-prev) / float64(prev)) * 100
}

// Detector runs the nine-rule bot detection pipeline against a clip's
// history.
type Detector struct{}

// New creates a Detector. It carries no state; every run is pure given its
// input history and platform.
func New() *Detector {
	return &Detector{}
}

// Detect runs every applicable rule against history (newest-first) for the
// given platform and returns the aggregate result.
func (d *Detector) Detect(platform domain.Platform, history []domain.StatsHistoryEntry) domain.BotDetectionResult {
	t := thresholdsFor(platform)

	var flags []domain.BotFlag
	for _, rule := range []func(platformThresholds, []domain.StatsHistoryEntry) *domain.BotFlag{
		viewsSpikeRule,
		likesSpikeRule,
		commentsSpikeRule,
		engagementRatioRule,
		zeroVarianceRule,
		velocityAnomalyRule,
		ratioAnomalyRule,
		suddenStopRule,
		timePatternRule,
	} {
		if flag := rule(t, history); flag != nil {
			flags = append(flags, *flag)
		}
	}

	return domain.BotDetectionResult{
		HasAnomalies:    len(flags) > 0,
		Flags:           flags,
		ConfidenceScore: meanConfidence(flags),
	}
}

func meanConfidence(flags []domain.BotFlag) int {
	if len(flags) == 0 {
		return 0
	}
	total := 0
	for _, f := range flags {
		total += f.Confidence
	}
	return total / len(flags)
}

func viewsSpikeRule(t platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 2 {
		return nil
	}
	latest, prev := h[0], h[1]
	g := growthRate(prev.Views, latest.Views)
	delta := latest.Views - prev.Views

	switch {
	case g > t.viewsSpike.high && delta > 2*t.minViews:
		return flag(domain.FlagViewsSpike, domain.SeverityHigh, 90, "views grew abnormally fast")
	case g > t.viewsSpike.medium && delta > t.minViews:
		return flag(domain.FlagViewsSpike, domain.SeverityMedium, 70, "views grew faster than expected")
	default:
		return nil
	}
}

func likesSpikeRule(t platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 2 {
		return nil
	}
	latest, prev := h[0], h[1]
	g := growthRate(prev.Likes, latest.Likes)
	delta := latest.Likes - prev.Likes

	switch {
	case g > t.likesSpike.high && delta > 100:
		return flag(domain.FlagLikesSpike, domain.SeverityHigh, 85, "likes grew abnormally fast")
	case g > t.likesSpike.medium && delta > 50:
		return flag(domain.FlagLikesSpike, domain.SeverityMedium, 65, "likes grew faster than expected")
	default:
		return nil
	}
}

func commentsSpikeRule(t platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 2 {
		return nil
	}
	latest, prev := h[0], h[1]
	g := growthRate(prev.Comments, latest.Comments)
	delta := latest.Comments - prev.Comments

	if g > t.commentsSpike.high && delta > 50 {
		return flag(domain.FlagCommentsSpike, domain.SeverityHigh, 88, "comments grew abnormally fast")
	}
	return nil
}

func engagementRatioRule(t platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 2 {
		return nil
	}
	latest := h[0]
	if latest.Views <= 0 {
		return nil
	}
	r := float64(latest.Likes+latest.Comments) / float64(latest.Views)

	switch {
	case r > t.engRatio.high && latest.Views > t.minViews:
		return flag(domain.FlagEngagementRatio, domain.SeverityHigh, 92, "engagement ratio implausibly high")
	case r > t.engRatio.medium:
		return flag(domain.FlagEngagementRatio, domain.SeverityMedium, 75, "engagement ratio unusually high")
	default:
		return nil
	}
}

func zeroVarianceRule(t platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 5 {
		return nil
	}
	if h[0].Views <= t.minViews {
		return nil
	}

	var samples []float64
	for i := 0; i < len(h)-1; i++ {
		g := growthRate(h[i+1].Views, h[i].Views)
		if math.IsInf(g, 0) {
			continue
		}
		samples = append(samples, g)
	}
	if len(samples) < 5 {
		return nil
	}

	mean, stdev := meanStdev(samples)
	if mean == 0 {
		return nil
	}
	cv := stdev / math.Abs(mean)

	if cv < 0.1 {
		return flag(domain.FlagZeroVariance, domain.SeverityHigh, 95, "near-linear view growth")
	}
	return nil
}

func velocityAnomalyRule(_ platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 5 {
		return nil
	}

	velocities := make([]float64, 0, len(h)-1)
	for i := 0; i < len(h)-1; i++ {
		velocities = append(velocities, float64(h[i].Views-h[i+1].Views))
	}

	accelerations := make([]float64, 0, len(velocities)-1)
	for i := 0; i < len(velocities)-1; i++ {
		accelerations = append(accelerations, velocities[i]-velocities[i+1])
	}
	if len(accelerations) == 0 {
		return nil
	}

	maxAbs := 0.0
	sum := 0.0
	for _, a := range accelerations {
		if math.Abs(a) > maxAbs {
			maxAbs = math.Abs(a)
		}
		sum += a
	}
	avg := sum / float64(len(accelerations))

	if maxAbs > 5*avg && maxAbs > 1000 {
		return flag(domain.FlagVelocityAnomaly, domain.SeverityHigh, 85, "erratic view velocity")
	}
	return nil
}

func ratioAnomalyRule(_ platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 5 {
		return nil
	}
	latest := h[0]
	if latest.Views < 100 {
		return nil
	}

	likesRatio := float64(latest.Likes) / float64(latest.Views)
	commentsRatio := float64(latest.Comments) / float64(latest.Views)

	switch {
	case likesRatio > 0.15 && latest.Views > 1000:
		return flag(domain.FlagRatioAnomaly, domain.SeverityHigh, 90, "likes-to-views ratio implausibly high")
	case commentsRatio > 0.05 && latest.Views > 1000:
		return flag(domain.FlagRatioAnomaly, domain.SeverityMedium, 75, "comments-to-views ratio unusually high")
	default:
		return nil
	}
}

func suddenStopRule(_ platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 12 {
		return nil
	}

	recentAvg := windowAvgGrowth(h[0:6])
	previousAvg := windowAvgGrowth(h[6:12])

	if previousAvg > 500 && recentAvg < 0.1*previousAvg {
		return flag(domain.FlagSuddenStop, domain.SeverityMedium, 70, "view growth stopped abruptly")
	}
	return nil
}

// windowAvgGrowth averages the five per-step view deltas within a six-entry
// newest-first window.
func windowAvgGrowth(window []domain.StatsHistoryEntry) float64 {
	sum := 0.0
	for i := 0; i < len(window)-1; i++ {
		sum += float64(window[i].Views - window[i+1].Views)
	}
	return sum / float64(len(window)-1)
}

func timePatternRule(_ platformThresholds, h []domain.StatsHistoryEntry) *domain.BotFlag {
	if len(h) < 24 {
		return nil
	}

	var buckets [24]float64
	var counts [24]int
	for i := 0; i < len(h)-1; i++ {
		delta := float64(h[i].Views - h[i+1].Views)
		hour := h[i].RecordedAt.Hour()
		buckets[hour] += delta
		counts[hour]++
	}

	maxBucket := 0.0
	sum := 0.0
	nonEmpty := 0
	for i, b := range buckets {
		if counts[i] == 0 {
			continue
		}
		nonEmpty++
		sum += b
		if b > maxBucket {
			maxBucket = b
		}
	}
	if nonEmpty == 0 {
		return nil
	}
	avgBucket := sum / float64(nonEmpty)

	if maxBucket > 8*avgBucket && maxBucket > 5000 {
		return flag(domain.FlagTimePattern, domain.SeverityMedium, 70, "view growth concentrated in one hour of day")
	}
	return nil
}

func meanStdev(samples []float64) (mean, stdev float64) {
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	mean = sum / float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(samples))

	return mean, math.Sqrt(variance)
}

func flag(t domain.FlagType, sev domain.Severity, confidence int, description string) *domain.BotFlag {
	return &domain.BotFlag{Type: t, Severity: sev, Description: description, Confidence: confidence}
}
