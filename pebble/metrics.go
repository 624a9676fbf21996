// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "store"
	metricsInterval = 10 * time.Second
)

type metrics struct {
	commits       prometheus.Counter
	committedKeys prometheus.Counter
	deletedKeys   prometheus.Counter
	commitLatency metric.Averager

	stallStart time.Time
	writeStall prometheus.Counter

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	diskUsage      prometheus.Gauge
	tombstoneCount prometheus.Gauge
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	errs := wrappers.Errs{}
	m := &metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits",
			Help:      "number of block commits applied",
		}),
		committedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "committed_keys",
			Help:      "number of keys written by commits",
		}),
		deletedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deleted_keys",
			Help:      "number of keys removed by commits",
		}),
		commitLatency: metric.NewAveragerWithErrs(
			namespace,
			"commit",
			"time (in ns) spent writing a commit batch",
			r,
			&errs,
		),
		writeStall: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_stall_ns",
			Help:      "time spent stalled on disk writes",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_compactions",
			Help:      "number of compactions in progress",
		}),
		diskUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_usage_bytes",
			Help:      "bytes used by the account store on disk",
		}),
		tombstoneCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tombstone_count",
			Help:      "approximate count of internal tombstones",
		}),
	}
	errs.Add(
		r.Register(m.commits),
		r.Register(m.committedKeys),
		r.Register(m.deletedKeys),
		r.Register(m.writeStall),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.diskUsage),
		r.Register(m.tombstoneCount),
	)
	return m, errs.Err
}

func (m *metrics) recordCommit(written, deleted int, start time.Time) {
	m.commits.Inc()
	m.committedKeys.Add(float64(written))
	m.deletedKeys.Add(float64(deleted))
	m.commitLatency.Observe(float64(time.Since(start)))
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := 0
	if len(info.Input) > 0 {
		level = info.Input[0].Level
	}
	db.metrics.compactions.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Add(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			stats := db.db.Metrics()
			db.metrics.diskUsage.Set(float64(stats.DiskSpaceUsage()))
			db.metrics.tombstoneCount.Set(float64(stats.Keys.TombstoneCount))
		case <-db.closing:
			return
		}
	}
}
