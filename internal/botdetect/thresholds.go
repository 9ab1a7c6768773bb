package botdetect

import "github.com/clipdeck/statistics-service/internal/domain"

// spikeThreshold carries the high/medium growth-rate percentage pair for
// one counter.
type spikeThreshold struct {
	high   float64
	medium float64
}

// platformThresholds is the full set of growth-rate and floor thresholds
// that gate rules 1-4 for one platform.
type platformThresholds struct {
	viewsSpike    spikeThreshold
	likesSpike    spikeThreshold
	commentsSpike spikeThreshold
	engRatio      spikeThreshold
	minViews      int64
}

var thresholdTable = map[domain.Platform]platformThresholds{
	domain.PlatformTikTok: {
		viewsSpike:    spikeThreshold{800, 300},
		likesSpike:    spikeThreshold{400, 200},
		commentsSpike: spikeThreshold{500, 250},
		engRatio:      spikeThreshold{0.40, 0.25},
		minViews:      500,
	},
	domain.PlatformInstagram: {
		viewsSpike:    spikeThreshold{600, 250},
		likesSpike:    spikeThreshold{350, 180},
		commentsSpike: spikeThreshold{450, 220},
		engRatio:      spikeThreshold{0.35, 0.20},
		minViews:      300,
	},
	domain.PlatformYouTube: {
		viewsSpike:    spikeThreshold{700, 280},
		likesSpike:    spikeThreshold{380, 190},
		commentsSpike: spikeThreshold{480, 240},
		engRatio:      spikeThreshold{0.38, 0.22},
		minViews:      400,
	},
	domain.PlatformTwitter: {
		viewsSpike:    spikeThreshold{700, 280},
		likesSpike:    spikeThreshold{380, 190},
		commentsSpike: spikeThreshold{480, 240},
		engRatio:      spikeThreshold{0.38, 0.22},
		minViews:      400,
	},
}

// thresholdsFor returns the platform's thresholds, falling back to YouTube's
// for any platform not in the table.
func thresholdsFor(platform domain.Platform) platformThresholds {
	if t, ok := thresholdTable[platform]; ok {
		return t
	}
	return thresholdTable[domain.PlatformYouTube]
}
