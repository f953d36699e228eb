package importer

import "github.com/prometheus/client_golang/prometheus"

const namespace = "hximport"

type metrics struct {
	records      *prometheus.CounterVec
	bytes        prometheus.Counter
	backpressure prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Response records handled, by result.",
		}, []string{"result"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Encoded response bytes written.",
		}),
		backpressure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backpressure_total",
			Help:      "Records whose writes reported backpressure.",
		}),
	}
	for _, c := range []prometheus.Collector{m.records, m.bytes, m.backpressure} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) written(n int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues("written").Inc()
	m.bytes.Add(float64(n))
}

func (m *metrics) skipped() {
	if m == nil {
		return
	}
	m.records.WithLabelValues("skipped").Inc()
}

func (m *metrics) blocked() {
	if m == nil {
		return
	}
	m.backpressure.Inc()
}
