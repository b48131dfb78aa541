package action

import (
	"time"

	"github.com/zeromicro/go-zero/core/metric"
)

const namespace = "blink"

var (
	requestsTotal = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: namespace,
		Subsystem: "action",
		Name:      "requests_total",
		Help:      "blink action requests by kind and result.",
		Labels:    []string{"kind", "result"},
	})

	requestDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: namespace,
		Subsystem: "action",
		Name:      "duration_ms",
		Help:      "blink action request duration in milliseconds.",
		Labels:    []string{"kind"},
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
)

// Observe 记录一次 action 请求；result 为 ok 或错误分类名
func Observe(kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = Classify(err).Kind.String()
	}
	requestsTotal.Inc(kind, result)
	requestDuration.Observe(time.Since(start).Milliseconds(), kind)
}
