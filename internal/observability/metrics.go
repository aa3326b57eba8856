package observability

import (
	"strconv"
	"sync"
	"time"
)

// Bridge counter names.
const (
	CounterInboundMerged    = "inbound_merged"
	CounterDuplicateDropped = "duplicate_dropped"
	CounterLinkageDropped   = "linkage_dropped"
	CounterReplySent        = "reply_sent"
	CounterSendFailed       = "send_failed"
	CounterRetryScheduled   = "retry_scheduled"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	bridgeCount  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		bridgeCount:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordBridge increments the named bridge counter.
func (m *Metrics) RecordBridge(counter string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bridgeCount[counter]++
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"requests": copyCounters(m.requestCount),
		"errors":   copyCounters(m.errorCount),
		"bridge":   copyCounters(m.bridgeCount),
	}
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for key, val := range src {
		dst[key] = val
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
