package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	EligibilityDecisionsTotal *prometheus.CounterVec
	CreditScore               prometheus.Histogram
	LoansIssuedTotal          prometheus.Counter
	LoanAmountIssued          prometheus.Counter
	CustomersRegisteredTotal  prometheus.Counter
}

type IngestionMetrics struct {
	RunsTotal     *prometheus.CounterVec
	RowsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	LastSuccessTs prometheus.Gauge
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		EligibilityDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_eligibility_decisions_total",
				Help: "Eligibility decisions by outcome (approved, rate_corrected, rejected_emi, rejected_limit, rejected_score).",
			},
			[]string{"outcome"},
		),
		CreditScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_credit_score",
				Help:    "Distribution of computed credit scores.",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		LoansIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_issued_total",
				Help: "Total number of loans created.",
			},
		),
		LoanAmountIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loan_amount_issued_total",
				Help: "Sum of principal of all loans created.",
			},
		),
		CustomersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_customers_registered_total",
				Help: "Total number of customers registered through the API.",
			},
		),
	}

	Ingestion = IngestionMetrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_ingest_runs_total",
				Help: "Spreadsheet ingestion runs by trigger and status.",
			},
			[]string{"trigger", "status"},
		),
		RowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_ingest_rows_total",
				Help: "Spreadsheet rows processed by sheet and result.",
			},
			[]string{"sheet", "result"},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_ingest_run_duration_seconds",
				Help:    "Duration of spreadsheet ingestion runs.",
				Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 300},
			},
		),
		LastSuccessTs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_engine_ingest_last_success_timestamp_seconds",
				Help: "Unix time of the last successful ingestion run.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordDecision(outcome string, score int) {
	Business.EligibilityDecisionsTotal.WithLabelValues(outcome).Inc()
	Business.CreditScore.Observe(float64(score))
}

func RecordLoanIssued(amount float64) {
	Business.LoansIssuedTotal.Inc()
	Business.LoanAmountIssued.Add(amount)
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordIngestRun(trigger, status string, duration time.Duration) {
	Ingestion.RunsTotal.WithLabelValues(trigger, status).Inc()
	Ingestion.RunDuration.Observe(duration.Seconds())
	if status == "success" {
		Ingestion.LastSuccessTs.SetToCurrentTime()
	}
}

func RecordIngestRows(sheet, result string, n int) {
	if n <= 0 {
		return
	}
	Ingestion.RowsTotal.WithLabelValues(sheet, result).Add(float64(n))
}
