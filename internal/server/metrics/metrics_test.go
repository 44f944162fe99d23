package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDBObserver_CountsErrorsPerKind(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("update"))

	var o DBObserver
	o.ObserveQuery("update", 3*time.Millisecond, nil)
	o.ObserveQuery("update", 3*time.Millisecond, errors.New("db down"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("update"))
	assert.Equal(t, before+1, after)
}

func TestDBObserver_RecordsDuration(t *testing.T) {
	var o DBObserver
	o.ObserveQuery("select", 10*time.Millisecond, nil)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(DBQueryDurationSeconds), 1)
}

func TestReadDirectoryStats_ReflectsCounters(t *testing.T) {
	before, err := ReadDirectoryStats()
	assert.NoError(t, err)

	Registrations.Inc()
	Authentications.WithLabelValues(AuthSuccess).Inc()
	Authentications.WithLabelValues(AuthMismatch).Add(2)

	after, err := ReadDirectoryStats()
	assert.NoError(t, err)
	assert.Equal(t, before.Registrations+1, after.Registrations)
	assert.Equal(t, before.Authentications[AuthSuccess]+1, after.Authentications[AuthSuccess])
	assert.Equal(t, before.Authentications[AuthMismatch]+2, after.Authentications[AuthMismatch])
}
