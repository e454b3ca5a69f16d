package auth

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionCounter     *prometheus.CounterVec //nolint:gochecknoglobals
	resolutionCounterOnce sync.Once              //nolint:gochecknoglobals
)

// resolutions counts a permission resolution by outcome (ok, empty, error).
func resolutions(outcome string) {
	resolutionCounterOnce.Do(func() {
		resolutionCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_resolutions_total",
				Help: "Number of effective permission resolutions, differentiated by outcome.",
			},
			[]string{"outcome"},
		)
	})

	resolutionCounter.WithLabelValues(outcome).Inc()
}
