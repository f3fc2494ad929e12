package postgres

import (
	"time"

	"classhub/internal/observability"
)

// observeQuery records query latency under the db_query_duration_seconds
// histogram. Call with defer at the top of a repository method.
func observeQuery(operation, table string, start time.Time) {
	observability.DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
