package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// statSource is implemented by *pgxpool.Pool.
type statSource interface {
	Stat() *pgxpool.Stat
}

// PoolCollector exports pgxpool statistics as Prometheus metrics. Values are
// read from the pool at scrape time.
type PoolCollector struct {
	src statSource

	acquireCount         *prometheus.Desc
	acquireDuration      *prometheus.Desc
	canceledAcquireCount *prometheus.Desc
	emptyAcquireCount    *prometheus.Desc
	acquiredConns        *prometheus.Desc
	idleConns            *prometheus.Desc
	constructingConns    *prometheus.Desc
	totalConns           *prometheus.Desc
	maxConns             *prometheus.Desc
}

// Compile-time interface check.
var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector creates a collector over the given pool.
func NewPoolCollector(src statSource) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("todo", "db_pool", name), help, nil, nil)
	}

	return &PoolCollector{
		src:                  src,
		acquireCount:         desc("acquire_total", "Cumulative count of successful connection acquires."),
		acquireDuration:      desc("acquire_duration_seconds_total", "Total time spent waiting for connections."),
		canceledAcquireCount: desc("canceled_acquire_total", "Cumulative count of acquires canceled by context."),
		emptyAcquireCount:    desc("empty_acquire_total", "Cumulative count of acquires that waited for a connection."),
		acquiredConns:        desc("acquired_connections", "Connections currently checked out."),
		idleConns:            desc("idle_connections", "Connections currently idle."),
		constructingConns:    desc("constructing_connections", "Connections currently being established."),
		totalConns:           desc("total_connections", "Total connections currently in the pool."),
		maxConns:             desc("max_connections", "Configured maximum pool size."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquireCount
	ch <- c.acquireDuration
	ch <- c.canceledAcquireCount
	ch <- c.emptyAcquireCount
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.constructingConns
	ch <- c.totalConns
	ch <- c.maxConns
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stat()

	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireDuration, prometheus.CounterValue, s.AcquireDuration().Seconds())
	ch <- prometheus.MustNewConstMetric(c.canceledAcquireCount, prometheus.CounterValue, float64(s.CanceledAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquireCount, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.constructingConns, prometheus.GaugeValue, float64(s.ConstructingConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(s.MaxConns()))
}
