// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"strconv"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/modevm/consts"
)

type Metrics struct {
	txsSubmitted   prometheus.Counter
	txsRejected    prometheus.Counter
	txsExpired     prometheus.Counter
	txsSucceeded   prometheus.Counter
	txsFailed      prometheus.Counter
	blocksAccepted prometheus.Counter
	actionResults  *prometheus.CounterVec
	mempoolSize    prometheus.Gauge
	height         prometheus.Gauge
	blockBuild     metric.Averager
	blockAccept    metric.Averager
}

func newMetrics(r prometheus.Registerer) (*Metrics, error) {
	blockBuild, err := metric.NewAverager(
		"",
		"chain_block_build",
		"time spent building blocks",
		r,
	)
	if err != nil {
		return nil, err
	}
	blockAccept, err := metric.NewAverager(
		"",
		"chain_block_accept",
		"time spent accepting blocks",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs added to the mempool",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of submitted txs that never reached the mempool",
		}),
		txsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_expired",
			Help:      "number of txs dropped from the mempool after expiry",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_succeeded",
			Help:      "number of included txs whose action succeeded",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of included txs that failed",
		}),
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "blocks_accepted",
			Help:      "number of accepted blocks",
		}),
		actionResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "action_results",
			Help:      "number of executed actions by type and outcome",
		}, []string{"action", "outcome"}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chain",
			Name:      "mempool_size",
			Help:      "number of transactions in the mempool",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chain",
			Name:      "height",
			Help:      "height of the last accepted block",
		}),
		blockBuild:  blockBuild,
		blockAccept: blockAccept,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsRejected),
		r.Register(m.txsExpired),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.blocksAccepted),
		r.Register(m.actionResults),
		r.Register(m.mempoolSize),
		r.Register(m.height),
	)
	return m, errs.Err
}

func actionName(typeID uint8) string {
	switch typeID {
	case consts.SetValueID:
		return "set_value"
	case consts.SwitchModeID:
		return "switch_mode"
	case consts.ExecuteActionID:
		return "execute_action"
	default:
		return strconv.Itoa(int(typeID))
	}
}

func (m *Metrics) recordResult(actionID uint8, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.actionResults.WithLabelValues(actionName(actionID), outcome).Inc()
}
