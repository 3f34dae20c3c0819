package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapProber map[string]bool

func (m mapProber) CheckHealth(ctx context.Context, name string) bool { return m[name] }

func TestSnapshotUp(t *testing.T) {
	monitor := NewMonitor(mapProber{"product": true, "review": true}, []string{"product", "review"})
	monitor.Refresh(context.Background())

	snapshot := monitor.Snapshot()
	assert.True(t, snapshot.Up())
	assert.True(t, snapshot.Services["product"])
	assert.False(t, snapshot.CheckedAt.IsZero())
}

func TestSnapshotDownWhenAnyServiceDown(t *testing.T) {
	monitor := NewMonitor(mapProber{"product": true, "review": false}, []string{"product", "review"})
	monitor.Refresh(context.Background())

	assert.False(t, monitor.Snapshot().Up())
}

func TestEmptySnapshotIsDown(t *testing.T) {
	monitor := NewMonitor(mapProber{}, nil)
	assert.False(t, monitor.Snapshot().Up())
}
