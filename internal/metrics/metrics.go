package metrics

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	rateLimited   int64
	proxyErrors   map[string]int64
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                   `json:"total_requests"`
	RateLimited   int64                   `json:"rate_limited"`
	Uptime        time.Duration           `json:"uptime"`
	Routes        map[string]RouteMetrics `json:"routes"`
}

type RouteMetrics struct {
	Requests    int64         `json:"requests"`
	ProxyErrors int64         `json:"proxy_errors"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		proxyErrors:   make(map[string]int64),
		startTime:     time.Now(),
	}
}

func (m *Metrics) RecordRequest(route string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests[route]++

	m.responseTimes[route] = append(m.responseTimes[route], duration)
	if len(m.responseTimes[route]) > 1000 {
		m.responseTimes[route] = m.responseTimes[route][1:]
	}

	if m.statusCodes[route] == nil {
		m.statusCodes[route] = make(map[int]int64)
	}
	m.statusCodes[route][statusCode]++
}

func (m *Metrics) RecordRateLimited() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rateLimited++
}

func (m *Metrics) RecordProxyError(route string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.proxyErrors[route]++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		RateLimited: m.rateLimited,
		Uptime:      time.Since(m.startTime),
		Routes:      make(map[string]RouteMetrics),
	}

	for route, count := range m.requests {
		snap.TotalRequests += count

		rm := RouteMetrics{
			Requests:    count,
			ProxyErrors: m.proxyErrors[route],
			StatusCodes: make(map[int]int64),
		}
		for code, n := range m.statusCodes[route] {
			rm.StatusCodes[code] = n
		}

		times := m.responseTimes[route]
		if len(times) > 0 {
			sorted := make([]time.Duration, len(times))
			copy(sorted, times)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			var total time.Duration
			for _, d := range sorted {
				total += d
			}
			rm.AvgResponse = total / time.Duration(len(sorted))
			rm.P50Response = percentile(sorted, 0.50)
			rm.P95Response = percentile(sorted, 0.95)
			rm.P99Response = percentile(sorted, 0.99)
		}

		snap.Routes[route] = rm
	}

	return snap
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
