package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.MovementRecorded("ANIMAL")
	m.MovementRecorded("ANIMAL")
	m.MovementRecorded("LOT")
	m.GenealogyBuilt("cycle")
	m.OwnershipReplaced()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("ANIMAL")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("LOT")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GenealogyBuilds.WithLabelValues("cycle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OwnershipReplacements))
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MovementRecorded("ANIMAL")
		m.GenealogyBuilt("ok")
		m.OwnershipReplaced()
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.OwnershipReplaced()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "livestock_ownership_replacements_total 1"))
}
