package libhkb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricChainMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hkb_chain_elements_materialized_total",
		Help: "Chain elements created on first visit",
	})

	metricChainHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hkb_chain_cache_hits_total",
		Help: "Chain element lookups served from a root's cache",
	})

	metricChainPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hkb_chain_pruned_total",
		Help: "Chain queries skipped because the chain misses the query box",
	})

	metricFractionHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hkb_fraction_memo_hits_total",
		Help: "Fraction expansions served from the memo table",
	})

	metricFractionMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hkb_fraction_memo_misses_total",
		Help: "Fraction expansions computed or loaded on first use",
	})

	metricChops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hkb_chops_total",
		Help: "Chop attempts by player and result",
	}, []string{"player", "result"})
)
