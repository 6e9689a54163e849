// Package observability provides Prometheus collectors and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts identity events (register, login, password reset) by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_auth_events_total",
		Help: "Total identity events by type and outcome",
	}, []string{"event", "outcome"})

	// SocialActions counts content and graph mutations.
	SocialActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_social_actions_total",
		Help: "Total social mutations by action",
	}, []string{"action"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})
)

// RecordAuthEvent increments the identity event counter.
func RecordAuthEvent(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthEvents.WithLabelValues(event, outcome).Inc()
}

// RecordSocialAction increments the mutation counter for action.
func RecordSocialAction(action string) {
	SocialActions.WithLabelValues(action).Inc()
}

const queryStartKey = "observability:query_start"

// RegisterDatabaseMetrics installs gorm callbacks that observe query latency
// per operation and table.
func RegisterDatabaseMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []func() error{
		func() error {
			if err := cb.Create().Before("gorm:create").Register("metrics:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("metrics:after_create", after("create"))
		},
		func() error {
			if err := cb.Query().Before("gorm:query").Register("metrics:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("metrics:after_query", after("query"))
		},
		func() error {
			if err := cb.Update().Before("gorm:update").Register("metrics:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("metrics:after_update", after("update"))
		},
		func() error {
			if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete"))
		},
		func() error {
			if err := cb.Row().Before("gorm:row").Register("metrics:before_row", before); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("metrics:after_row", after("row"))
		},
		func() error {
			if err := cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("raw"))
		},
	}
	for _, register := range steps {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}
