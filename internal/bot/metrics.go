package bot

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	CommandsProcessed    *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
}

var (
	metricsOnce sync.Once
	shared      *Metrics
)

// NewMetrics возвращает метрики бота; регистрируются один раз на процесс
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		shared = &Metrics{
			CommandsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "washify_admin_bot_commands_total",
				Help: "Admin bot commands and callbacks by name",
			}, []string{"command"}),

			ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "washify_admin_bot_errors_total",
				Help: "Admin bot handler errors and recovered panics",
			}),

			UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "washify_admin_bot_update_processing_time_seconds",
				Help:    "Time spent processing updates",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return shared
}

func (b *Bot) countCommand(name string) {
	if b.metrics != nil {
		b.metrics.CommandsProcessed.WithLabelValues(name).Inc()
	}
}
