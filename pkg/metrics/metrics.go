// Package metrics содержит Prometheus метрики сервиса
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
// Все методы допускают nil-получатель, чтобы метрики можно было отключить конфигурацией
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections *prometheus.GaugeVec

	AdmissionDecisions *prometheus.CounterVec
	SlotFillRatio      *prometheus.GaugeVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Общее количество HTTP запросов",
			},
			[]string{"service", "method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Время обработки HTTP запросов в секундах",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Время выполнения запросов к БД в секундах",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"service", "operation"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_query_errors_total",
				Help: "Количество ошибок запросов к БД",
			},
			[]string{"service", "operation"},
		),
		DBOpenConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_connections",
				Help: "Состояние пула соединений с БД",
			},
			[]string{"service", "state"},
		),

		AdmissionDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_admission_decisions_total",
				Help: "Решения о допуске бронирований по исходу и причине",
			},
			[]string{"service", "outcome", "reason"},
		),
		SlotFillRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reservation_slot_fill_ratio",
				Help: "Заполненность слота (0..1)",
			},
			[]string{"service", "date", "start_hour"},
		),
	}
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(seconds)
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(m.serviceName, operation).Inc()
	}
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.serviceName, "open").Set(float64(open))
	m.DBOpenConnections.WithLabelValues(m.serviceName, "in_use").Set(float64(inUse))
	m.DBOpenConnections.WithLabelValues(m.serviceName, "idle").Set(float64(idle))
}

// ObserveAdmission учитывает решение о допуске бронирования
// outcome: admitted | rejected
func (m *Metrics) ObserveAdmission(outcome, reason string) {
	if m == nil {
		return
	}
	m.AdmissionDecisions.WithLabelValues(m.serviceName, outcome, reason).Inc()
}

// SetSlotFill обновляет заполненность слота
func (m *Metrics) SetSlotFill(date string, startHour int, ratio float64) {
	if m == nil {
		return
	}
	m.SlotFillRatio.WithLabelValues(m.serviceName, date, strconv.Itoa(startHour)).Set(ratio)
}
