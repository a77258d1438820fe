package metrics

import "github.com/prometheus/client_golang/prometheus"

// ManifestMetrics counts manifest write outcomes.
type ManifestMetrics struct {
	created         prometheus.Counter
	linesWritten    prometheus.Counter
	duplicateCnNo   prometheus.Counter
	numberConflicts prometheus.Counter
	confirmed       prometheus.Counter
	exports         *prometheus.CounterVec
}

// NewManifestMetrics registers the manifest metrics on the provided registerer.
func NewManifestMetrics(reg prometheus.Registerer) *ManifestMetrics {
	if reg == nil {
		return &ManifestMetrics{}
	}
	m := &ManifestMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manifests_created_total",
			Help: "Manifest headers created.",
		}),
		linesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manifest_lines_written_total",
			Help: "Manifest lines inserted.",
		}),
		duplicateCnNo: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manifest_duplicate_cn_no_total",
			Help: "Lines stored with a zero price because the cn_no already existed.",
		}),
		numberConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manifest_no_conflicts_total",
			Help: "Manifest number allocations retried after a unique violation.",
		}),
		confirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manifests_confirmed_total",
			Help: "Shipments confirmed as delivered.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manifest_exports_total",
			Help: "Invoice documents rendered by format.",
		}, []string{"format"}),
	}
	reg.MustRegister(m.created, m.linesWritten, m.duplicateCnNo, m.numberConflicts, m.confirmed, m.exports)
	return m
}

func (m *ManifestMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *ManifestMetrics) AddLines(n int) {
	if m == nil || m.linesWritten == nil || n <= 0 {
		return
	}
	m.linesWritten.Add(float64(n))
}

func (m *ManifestMetrics) IncDuplicateCnNo() {
	if m == nil || m.duplicateCnNo == nil {
		return
	}
	m.duplicateCnNo.Inc()
}

func (m *ManifestMetrics) IncNumberConflict() {
	if m == nil || m.numberConflicts == nil {
		return
	}
	m.numberConflicts.Inc()
}

func (m *ManifestMetrics) IncConfirmed() {
	if m == nil || m.confirmed == nil {
		return
	}
	m.confirmed.Inc()
}

// IncExport counts one rendered document of the given format (pdf, xlsx).
func (m *ManifestMetrics) IncExport(format string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(format)).Inc()
}
