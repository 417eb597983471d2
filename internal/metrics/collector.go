// Package metrics provides in-memory aggregation of per-model usage
// statistics. The collector is constructed once by the process entry
// point and handed to the router and telemetry. There is no global
// registry.
package metrics

import (
	"sync"
	"time"
)

// Usage is one observation of a model answering a message.
type Usage struct {
	TokenCost    float64
	ResponseTime time.Duration
	Accuracy     float64
}

// ModelStats holds aggregated observations for one model.
type ModelStats struct {
	Count             int64
	TotalResponseTime time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalTokenCost    float64
	LastAccuracy      float64
	HandoverCount     int64
}

// ModelSnapshot provides computed stats for reporting.
type ModelSnapshot struct {
	Model             string  `json:"model"`
	Count             int64   `json:"count"`
	AvgResponseTimeMs float64 `json:"avgResponseTimeMs"`
	MinResponseTimeMs int64   `json:"minResponseTimeMs"`
	MaxResponseTimeMs int64   `json:"maxResponseTimeMs"`
	TotalTokenCost    float64 `json:"totalTokenCost"`
	LastAccuracy      float64 `json:"lastAccuracy"`
	HandoverCount     int64   `json:"handoverCount"`
}

// Snapshot is a point-in-time view of all models.
type Snapshot struct {
	UptimeSeconds float64         `json:"uptimeSeconds"`
	Models        []ModelSnapshot `json:"models"`
}

// Thresholds decide whether a model's latest numbers are acceptable.
type Thresholds struct {
	MaxTokenCost    float64
	MaxResponseTime time.Duration
	MinAccuracy     float64
}

// DefaultThresholds mirror the production alerting limits.
var DefaultThresholds = Thresholds{
	MaxTokenCost:    0.4,
	MaxResponseTime: 1800 * time.Millisecond,
	MinAccuracy:     0.85,
}

// Collector aggregates per-model usage. All methods are thread-safe
// and never fail; recording must not be able to break the reply path.
type Collector struct {
	mu         sync.RWMutex
	startTime  time.Time
	models     map[string]*ModelStats
	order      []string
	thresholds Thresholds
}

// NewCollector creates an empty collector with default thresholds.
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		models:     make(map[string]*ModelStats),
		thresholds: DefaultThresholds,
	}
}

func (c *Collector) getOrCreate(model string) *ModelStats {
	stats, ok := c.models[model]
	if !ok {
		stats = &ModelStats{MinResponseTime: time.Duration(1<<63 - 1)}
		c.models[model] = stats
		c.order = append(c.order, model)
	}
	return stats
}

// RecordUsage records one observation for a model.
func (c *Collector) RecordUsage(model string, usage Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.getOrCreate(model)
	stats.Count++
	stats.TotalResponseTime += usage.ResponseTime
	stats.TotalTokenCost += usage.TokenCost
	stats.LastAccuracy = usage.Accuracy

	if usage.ResponseTime < stats.MinResponseTime {
		stats.MinResponseTime = usage.ResponseTime
	}
	if usage.ResponseTime > stats.MaxResponseTime {
		stats.MaxResponseTime = usage.ResponseTime
	}
}

// RecordHandover counts an escalation attributed to a model.
func (c *Collector) RecordHandover(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getOrCreate(model).HandoverCount++
}

// IsModelPerformant reports whether the model's latest numbers sit
// inside the thresholds. Unknown models are not performant.
func (c *Collector) IsModelPerformant(model string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats, ok := c.models[model]
	if !ok || stats.Count == 0 {
		return false
	}

	avgCost := stats.TotalTokenCost / float64(stats.Count)
	avgTime := stats.TotalResponseTime / time.Duration(stats.Count)
	return avgCost <= c.thresholds.MaxTokenCost &&
		avgTime <= c.thresholds.MaxResponseTime &&
		stats.LastAccuracy >= c.thresholds.MinAccuracy
}

// Snapshot returns computed stats for every model, in first-seen order.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Models:        make([]ModelSnapshot, 0, len(c.order)),
	}
	for _, model := range c.order {
		stats := c.models[model]
		if stats.Count == 0 {
			continue
		}
		snap.Models = append(snap.Models, ModelSnapshot{
			Model:             model,
			Count:             stats.Count,
			AvgResponseTimeMs: float64(stats.TotalResponseTime.Milliseconds()) / float64(stats.Count),
			MinResponseTimeMs: stats.MinResponseTime.Milliseconds(),
			MaxResponseTimeMs: stats.MaxResponseTime.Milliseconds(),
			TotalTokenCost:    stats.TotalTokenCost,
			LastAccuracy:      stats.LastAccuracy,
			HandoverCount:     stats.HandoverCount,
		})
	}
	return snap
}
