package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/phase"
)

// Metrics exports game activity to Prometheus. It implements game.Observer.
type Metrics struct {
	registry *prometheus.Registry

	months  prometheus.Counter
	saves   *prometheus.CounterVec
	loads   *prometheus.CounterVec
	actions *prometheus.CounterVec
	phase   *prometheus.GaugeVec
}

var _ game.Observer = (*Metrics)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		months: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mom",
			Name:      "months_processed_total",
			Help:      "Game months simulated.",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mom",
			Name:      "saves_total",
			Help:      "Save attempts by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mom",
			Name:      "loads_total",
			Help:      "Load attempts by result.",
		}, []string{"result"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mom",
			Name:      "actions_total",
			Help:      "Player actions by name and outcome.",
		}, []string{"action", "ok"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mom",
			Name:      "phase",
			Help:      "1 for the current game phase.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(m.months, m.saves, m.loads, m.actions, m.phase)
	return m
}

// WatchResources exports live balances of g. Call once, after the game is
// built; the gauges read the game at scrape time.
func (m *Metrics) WatchResources(g *game.Game, kinds ...generic.ResourceKind) {
	for _, kind := range kinds {
		kind := kind
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "mom",
			Name:        "resource_balance",
			Help:        "Current resource balance.",
			ConstLabels: prometheus.Labels{"resource": string(kind)},
		}, func() float64 {
			return g.View().Resources[kind]
		}))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) MonthProcessed(p phase.Phase) {
	m.months.Inc()
	for _, each := range []phase.Phase{phase.Job, phase.Company, phase.Research, phase.AGI} {
		v := 0.0
		if each == p {
			v = 1
		}
		m.phase.WithLabelValues(string(each)).Set(v)
	}
}

func (m *Metrics) Saved(err error) { m.saves.WithLabelValues(result(err)).Inc() }

func (m *Metrics) Loaded(found bool, err error) {
	r := result(err)
	if err == nil && !found {
		r = "empty"
	}
	m.loads.WithLabelValues(r).Inc()
}

func (m *Metrics) ActionTaken(action string, ok bool) {
	m.actions.WithLabelValues(action, strconv.FormatBool(ok)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
