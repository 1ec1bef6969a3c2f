package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("GET /api/itineraries", 200, 15*time.Millisecond)
		IncFormAction("submit", "ok")
		IncSyncTask("completed")
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(decodeFallbacks.WithLabelValues("itinerary", "highlights"))
	IncDecodeFallback("itinerary", "highlights")
	IncDecodeFallback("itinerary", "highlights")
	assert.Equal(t, before+2, testutil.ToFloat64(decodeFallbacks.WithLabelValues("itinerary", "highlights")))

	before = testutil.ToFloat64(backups.WithLabelValues("ok"))
	IncBackup("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(backups.WithLabelValues("ok")))

	before = testutil.ToFloat64(contentWrites.WithLabelValues("destination", "create"))
	IncContentWrite("destination", "create")
	assert.Equal(t, before+1, testutil.ToFloat64(contentWrites.WithLabelValues("destination", "create")))
}
