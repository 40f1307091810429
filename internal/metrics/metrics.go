package metrics

import (
	"net/http"
	"time"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/stock"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var processStartedAt = time.Now().UTC()

// Source is the reference data the collectors read at scrape time.
type Source interface {
	StockLots() []models.StockLot
	Counts() map[storage.Kind]int
}

// Metrics owns a private registry. It also records authorization decisions.
type Metrics struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	reloads   *prometheus.CounterVec
}

func New(source Source, classifier *stock.Classifier) *Metrics {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wms_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wms_authorization_decisions_total",
		Help: "Authorization decisions by action and result.",
	}, []string{"action", "result"})
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wms_reference_reloads_total",
		Help: "Scheduled reference data reloads by result.",
	}, []string{"result"})
	reg.MustRegister(decisions, reloads)
	reg.MustRegister(newStockCollector(source, classifier))

	return &Metrics{
		registry:  reg,
		decisions: decisions,
		reloads:   reloads,
	}
}

// RecordDecision implements rbac.DecisionRecorder.
func (m *Metrics) RecordDecision(action rbac.Action, allowed bool) {
	result := "deny"
	if allowed {
		result = "allow"
	}
	m.decisions.WithLabelValues(string(action), result).Inc()
}

// RecordReload counts one scheduled reload.
func (m *Metrics) RecordReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// stockCollector classifies the current lots on every scrape.
type stockCollector struct {
	source     Source
	classifier *stock.Classifier

	quantityDesc *prometheus.Desc
	recordsDesc  *prometheus.Desc
}

func newStockCollector(source Source, classifier *stock.Classifier) prometheus.Collector {
	return &stockCollector{
		source:     source,
		classifier: classifier,
		quantityDesc: prometheus.NewDesc(
			"wms_stock_quantity",
			"Stock quantity per ownership/custody classification.",
			[]string{"metric"},
			nil,
		),
		recordsDesc: prometheus.NewDesc(
			"wms_reference_records",
			"Number of reference records loaded per kind.",
			[]string{"kind"},
			nil,
		),
	}
}

func (c *stockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.quantityDesc
	ch <- c.recordsDesc
}

func (c *stockCollector) Collect(ch chan<- prometheus.Metric) {
	if c.source == nil {
		return
	}
	for _, s := range c.classifier.Classify(c.source.StockLots()) {
		ch <- prometheus.MustNewConstMetric(c.quantityDesc, prometheus.GaugeValue, float64(s.Value), s.Label)
	}
	counts := c.source.Counts()
	for _, kind := range storage.Kinds() {
		ch <- prometheus.MustNewConstMetric(c.recordsDesc, prometheus.GaugeValue, float64(counts[kind]), string(kind))
	}
}

var _ rbac.DecisionRecorder = (*Metrics)(nil)
