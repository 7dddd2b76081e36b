package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	enrichLatency   *HistogramVec
	catalogRequests *CounterVec
	catalogLatency  *HistogramVec
	encodeLatency   *HistogramVec
	scans           *CounterVec
	sseClients      *Gauge
	sseDropped      *Counter

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeEvery time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when metrics are off.
func Current() *Metrics {
	return instance
}

// Init installs the process-wide metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool, scrapeEvery time.Duration) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New(scrapeEvery)
		if log != nil {
			log.Info("Metrics enabled", "scrape_every", scrapeEvery.String())
		}
	})
	return instance
}

func New(scrapeEvery time.Duration) *Metrics {
	if scrapeEvery <= 0 {
		scrapeEvery = 10 * time.Second
	}
	latencyBuckets := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	return &Metrics{
		apiRequests: NewCounterVec("qr_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("qr_api_request_duration_seconds", "API request latency by method/route/status.", []string{"method", "route", "status"}, latencyBuckets),
		apiInflight: NewGauge("qr_api_inflight_requests", "In-flight API requests."),

		enrichLatency:   NewHistogramVec("qr_enrich_duration_seconds", "Per-record enrichment latency by outcome.", []string{"status"}, latencyBuckets),
		catalogRequests: NewCounterVec("qr_catalog_requests_total", "Catalog product queries by outcome.", []string{"status"}),
		catalogLatency:  NewHistogramVec("qr_catalog_request_duration_seconds", "Catalog product query latency.", []string{"status"}, latencyBuckets),
		encodeLatency:   NewHistogramVec("qr_image_encode_duration_seconds", "QR image encode latency by kind.", []string{"kind", "status"}, nil),
		scans:           NewCounterVec("qr_scans_total", "Scan redirects by outcome.", []string{"status"}),
		sseClients:      NewGauge("qr_sse_clients", "Connected realtime clients."),
		sseDropped:      NewCounter("qr_sse_dropped_messages_total", "Realtime messages dropped on full client buffers."),

		dbStats:   NewGaugeVec("qr_db_stats", "database/sql pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("qr_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("qr_redis_ping_seconds", "Redis ping latency."),

		scrapeEvery: scrapeEvery,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.enrichLatency, m.catalogRequests, m.catalogLatency, m.encodeLatency,
		m.scans, m.sseClients, m.sseDropped,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveEnrich(status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.enrichLatency.Observe(dur.Seconds(), status)
}

func (m *Metrics) ObserveCatalog(status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.catalogRequests.Inc(status)
	m.catalogLatency.Observe(dur.Seconds(), status)
}

func (m *Metrics) ObserveEncode(kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.encodeLatency.Observe(dur.Seconds(), kind, status)
}

func (m *Metrics) IncScan(status string) {
	if m == nil {
		return
	}
	m.scans.Inc(status)
}

func (m *Metrics) SSEClientsInc() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientsDec() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func (m *Metrics) IncSSEDropped() {
	if m == nil {
		return
	}
	m.sseDropped.Inc()
}

// StartDBCollector samples the gorm connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings rdb periodically. The client is owned by the
// caller and is not closed here.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// StatusLabel maps an error to the coarse outcome label used across metrics.
func StatusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
