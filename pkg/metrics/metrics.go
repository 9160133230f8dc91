package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// ReceiveMetrics 接收引擎的 Prometheus 指标集合
type ReceiveMetrics struct {
	classified *prometheus.CounterVec
	finished   *prometheus.CounterVec
	timedOut   *prometheus.CounterVec
	cacheDepth *prometheus.GaugeVec
}

// NewReceiveMetrics 创建指标并注册到 reg
func NewReceiveMetrics(reg prometheus.Registerer) *ReceiveMetrics {
	m := &ReceiveMetrics{
		classified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receive_messages_classified_total",
				Help: "Total number of mailbox nodes classified, by class",
			},
			[]string{"actor", "class"},
		),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receive_messages_finished_total",
				Help: "Total number of handled, dropped, cached and skipped nodes",
			},
			[]string{"actor", "result"},
		),
		timedOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receive_timeouts_total",
				Help: "Total number of fired receive timeouts",
			},
			[]string{"actor"},
		),
		cacheDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "receive_skip_cache_depth",
				Help: "Current number of nodes in the skip cache",
			},
			[]string{"actor"},
		),
	}

	reg.MustRegister(
		m.classified,
		m.finished,
		m.timedOut,
		m.cacheDepth,
	)

	return m
}

// Observer 返回绑定到 actorID 的观察者
func (m *ReceiveMetrics) Observer(actorID string) receive.Observer {
	return &actorObserver{m: m, actor: actorID}
}

// Forget 删除 actorID 的全部序列，Actor 退出后调用
func (m *ReceiveMetrics) Forget(actorID string) {
	labels := prometheus.Labels{"actor": actorID}
	m.classified.DeletePartialMatch(labels)
	m.finished.DeletePartialMatch(labels)
	m.timedOut.DeletePartialMatch(labels)
	m.cacheDepth.DeletePartialMatch(labels)
}

// Handler 返回暴露 g 中指标的 HTTP 处理器
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type actorObserver struct {
	m     *ReceiveMetrics
	actor string
}

var _ receive.Observer = (*actorObserver)(nil)

func (o *actorObserver) Classified(class receive.Class) {
	o.m.classified.WithLabelValues(o.actor, class.String()).Inc()
}

func (o *actorObserver) Finished(result receive.Result) {
	o.m.finished.WithLabelValues(o.actor, result.String()).Inc()
}

func (o *actorObserver) TimedOut() {
	o.m.timedOut.WithLabelValues(o.actor).Inc()
}

func (o *actorObserver) CacheResized(size int) {
	o.m.cacheDepth.WithLabelValues(o.actor).Set(float64(size))
}
