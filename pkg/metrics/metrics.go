package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	// Счетчик всех HTTP запросов с метками метода, пути и статуса
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Гистограмма времени обработки HTTP запросов (для расчета перцентилей)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets, // [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
		},
		[]string{"method", "path"},
	)

	// Solver metrics
	// Счетчик запросов генерации расписания по исходу
	SolveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solve_requests_total",
			Help: "Total number of schedule generation requests",
		},
		[]string{"outcome"}, // "solved", "infeasible", "rejected"
	)

	// Гистограмма длительности решения (решатель может работать до дедлайна,
	// поэтому корзины шире стандартных HTTP)
	SolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "Schedule solve duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// Счетчик прогонов, завершившихся без единой назначенной пары
	SolveInfeasibleTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solve_infeasible_total",
			Help: "Total number of solves that produced no feasible schedule",
		},
	)

	// Счетчик диагностических записей, найденных детекторами конфликтов
	ConflictsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflicts_detected_total",
			Help: "Total number of diagnostic records produced by conflict detectors",
		},
		[]string{"kind"}, // "classroom", "professor", "groups", "violated_request"
	)

	// Database metrics
	// Gauge для активных подключений к базе данных
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// Gauge для idle подключений к базе данных
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Счетчик ошибок базы данных
	DBErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total number of database errors",
		},
	)
)
