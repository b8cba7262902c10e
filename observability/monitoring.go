// Package observability aggregates client-side counters for the status view.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ClientStats is the snapshot handed to the status renderer.
type ClientStats struct {
	MessagesSent    uint64 `json:"messages_sent"`
	MessagesBlocked uint64 `json:"messages_blocked"`
	RuleViolations  uint64 `json:"rule_violations"`
	ModelViolations uint64 `json:"model_violations"`
	Reloads         uint64 `json:"reloads"`
	AppendConflicts uint64 `json:"append_conflicts"`

	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	CpuPercent float64 `json:"cpu_percent"`
	RamPercent float32 `json:"ram_percent"`
}

// MonitoringManager collects counters from every layer of the client.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats ClientStats

	MessagesSent    uint64
	MessagesBlocked uint64
	RuleViolations  uint64
	ModelViolations uint64
	Reloads         uint64
	AppendConflicts uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrMessagesSent() {
	atomic.AddUint64(&mm.MessagesSent, 1)
}

func (mm *MonitoringManager) IncrMessagesBlocked() {
	atomic.AddUint64(&mm.MessagesBlocked, 1)
}

func (mm *MonitoringManager) IncrRuleViolations(n uint64) {
	atomic.AddUint64(&mm.RuleViolations, n)
}

func (mm *MonitoringManager) IncrModelViolations(n uint64) {
	atomic.AddUint64(&mm.ModelViolations, n)
}

func (mm *MonitoringManager) IncrReloads() {
	atomic.AddUint64(&mm.Reloads, 1)
}

func (mm *MonitoringManager) IncrAppendConflicts() {
	atomic.AddUint64(&mm.AppendConflicts, 1)
}

// UpdateProcessUsage stores the latest probe from the health worker.
func (mm *MonitoringManager) UpdateProcessUsage(cpu float64, ram float32) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.CpuPercent = cpu
	mm.latestStats.RamPercent = ram
}

// GetLatest refreshes the counter and Go runtime fields and returns the
// snapshot. Process usage keeps whatever the health worker last reported.
func (mm *MonitoringManager) GetLatest() ClientStats {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats.MessagesSent = atomic.LoadUint64(&mm.MessagesSent)
	mm.latestStats.MessagesBlocked = atomic.LoadUint64(&mm.MessagesBlocked)
	mm.latestStats.RuleViolations = atomic.LoadUint64(&mm.RuleViolations)
	mm.latestStats.ModelViolations = atomic.LoadUint64(&mm.ModelViolations)
	mm.latestStats.Reloads = atomic.LoadUint64(&mm.Reloads)
	mm.latestStats.AppendConflicts = atomic.LoadUint64(&mm.AppendConflicts)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC

	return mm.latestStats
}

// Uptime helper for the status view.
type Uptime struct {
	started time.Time
}

func NewUptime() Uptime {
	return Uptime{started: time.Now()}
}

func (u Uptime) String() string {
	return time.Since(u.started).Round(time.Second).String()
}
