// Package metrics declares the Prometheus collectors of the directory and its
// database. Collectors live in the default registry of whichever process
// updates them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messagely_db_query_duration_seconds",
			Help:    "Duration of database statements in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_db_query_errors_total",
			Help: "Total number of failed database statements",
		},
		[]string{"kind"},
	)

	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messagely_registrations_total",
			Help: "Total number of registered users",
		},
	)

	Authentications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_authentications_total",
			Help: "Authentication attempts by outcome",
		},
		[]string{"result"},
	)

	DatabaseUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "messagely_database_up",
			Help: "1 when the last database ping succeeded, 0 otherwise",
		},
	)
)

// Authentication outcomes used as the "result" label.
const (
	AuthSuccess     = "success"
	AuthMismatch    = "mismatch"
	AuthUnknownUser = "unknown_user"
	AuthError       = "error"
)

// DBObserver feeds statement timings into the DB collectors. It satisfies
// dbx.QueryObserver.
type DBObserver struct{}

func (DBObserver) ObserveQuery(kind string, elapsed time.Duration, err error) {
	DBQueryDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(kind).Inc()
	}
}

// DirectoryStats is a point-in-time read of the directory counters.
type DirectoryStats struct {
	Registrations float64
	// Authentications is keyed by outcome label.
	Authentications map[string]float64
}

// ReadDirectoryStats gathers the directory counters from the default registry.
func ReadDirectoryStats() (DirectoryStats, error) {
	return readDirectoryStats(prometheus.DefaultGatherer)
}

func readDirectoryStats(g prometheus.Gatherer) (DirectoryStats, error) {
	families, err := g.Gather()
	if err != nil {
		return DirectoryStats{}, err
	}

	st := DirectoryStats{Authentications: map[string]float64{}}
	for _, mf := range families {
		switch mf.GetName() {
		case "messagely_registrations_total":
			for _, m := range mf.GetMetric() {
				st.Registrations += m.GetCounter().GetValue()
			}
		case "messagely_authentications_total":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "result" {
						st.Authentications[lp.GetValue()] += m.GetCounter().GetValue()
					}
				}
			}
		}
	}
	return st, nil
}
