package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker probes the client's own process every interval and feeds the
// usage numbers into the monitoring manager.
type HealthWorker struct {
	log      *slog.Logger
	stats    *MonitoringManager
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, stats *MonitoringManager, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, stats: stats, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping health worker")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.stats.UpdateProcessUsage(cpu, ram)
		}
	}
}
