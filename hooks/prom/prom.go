// Package prom exports autocache hook events as Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/autocache"
)

var _ autocache.Hooks = (*Hooks)(nil)

// Hooks implements autocache.Hooks. Keys are never used as label values.
type Hooks struct {
	lookups        *prometheus.CounterVec
	failures       *prometheus.CounterVec
	patternDeletes prometheus.Counter
	patternKeysDel prometheus.Counter
	shardFailures  *prometheus.CounterVec
}

// New registers the counters.
//   - reg:          registry to register with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "lookups_total",
			Help:        "Cache lookups by result (hit, miss)",
			ConstLabels: constLabels,
		}, []string{"result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "failures_total",
			Help:        "Absorbed failures by operation (set, get, delete, decode)",
			ConstLabels: constLabels,
		}, []string{"op"}),
		patternDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "pattern_deletes_total",
			Help:        "Pattern deletes fanned out across shards",
			ConstLabels: constLabels,
		}),
		patternKeysDel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "pattern_keys_deleted_total",
			Help:        "Keys removed by pattern deletes",
			ConstLabels: constLabels,
		}),
		shardFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "shard_failures_total",
			Help:        "Shards that failed during a pattern delete",
			ConstLabels: constLabels,
		}, []string{"shard"}),
	}
	reg.MustRegister(h.lookups, h.failures, h.patternDeletes, h.patternKeysDel, h.shardFailures)
	return h
}

func (h *Hooks) Lookup(_ string, hit bool) {
	if hit {
		h.lookups.WithLabelValues("hit").Inc()
		return
	}
	h.lookups.WithLabelValues("miss").Inc()
}

func (h *Hooks) OpFailed(op, _ string, _ error) { h.failures.WithLabelValues(op).Inc() }

func (h *Hooks) DecodeFailed(string, error) { h.failures.WithLabelValues("decode").Inc() }

func (h *Hooks) ShardFailed(_, shard string, _ error) { h.shardFailures.WithLabelValues(shard).Inc() }

func (h *Hooks) PatternDeleted(_ string, _, deleted, _ int) {
	h.patternDeletes.Inc()
	h.patternKeysDel.Add(float64(deleted))
}
