// Package health keeps a periodically refreshed snapshot of the core
// services' availability. The /health endpoint serves the snapshot rather
// than probing downstream on every request.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Prober checks whether one named service answers its health endpoint.
type Prober interface {
	CheckHealth(ctx context.Context, name string) bool
}

// Snapshot is the last observed state of the mesh.
type Snapshot struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Up reports whether every service was up at the last check.
func (s Snapshot) Up() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, up := range s.Services {
		if !up {
			return false
		}
	}
	return true
}

// Monitor refreshes the snapshot on a schedule.
type Monitor struct {
	prober   Prober
	services []string

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewMonitor creates a monitor over the named services.
func NewMonitor(prober Prober, services []string) *Monitor {
	return &Monitor{
		prober:   prober,
		services: services,
	}
}

// Refresh probes every service once and replaces the snapshot.
func (m *Monitor) Refresh(ctx context.Context) {
	services := make(map[string]bool, len(m.services))
	for _, name := range m.services {
		services[name] = m.prober.CheckHealth(ctx, name)
	}

	m.mu.Lock()
	m.snapshot = Snapshot{Services: services, CheckedAt: time.Now().UTC()}
	m.mu.Unlock()
}

// Snapshot returns the last observed state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Run refreshes immediately, then on the given interval until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	m.Refresh(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			m.Refresh(ctx)
			log.Debug().Interface("snapshot", m.Snapshot()).Msg("Health snapshot refreshed")
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}
