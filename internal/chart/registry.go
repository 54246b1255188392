package chart

import (
	"sync"

	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// RenderFunc is called with the new snapshot after every render.
type RenderFunc func(Snapshot)

// Registry owns the chart series.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Render listeners run on the caller's goroutine, outside the lock.
type Registry struct {
	mu       sync.RWMutex
	charts   []Chart
	index    map[ID]int
	revision uint64

	listenersMu sync.RWMutex
	listeners   []RenderFunc
}

// NewRegistry creates a registry holding the five empty dashboard charts.
func NewRegistry() *Registry {
	charts := defaultLayout()
	index := make(map[ID]int, len(charts))
	for i, c := range charts {
		index[c.ID] = i
	}
	return &Registry{charts: charts, index: index}
}

// OnRender registers a listener for render events.
func (r *Registry) OnRender(fn RenderFunc) {
	if fn == nil {
		return
	}
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, fn)
	r.listenersMu.Unlock()
}

// ClearAll empties every series. Nothing is rendered.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.clearLocked()
	r.mu.Unlock()
}

// Render publishes the current series as a new revision.
func (r *Registry) Render() Snapshot {
	r.mu.Lock()
	r.revision++
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
	return snap
}

// ApplyBulk replaces all series with points and renders once.
func (r *Registry) ApplyBulk(points []telemetry.Point) BulkResult {
	var res BulkResult

	r.mu.Lock()
	r.clearLocked()
	for _, p := range points {
		if r.appendLocked(p) {
			res.Routed++
		} else {
			res.Dropped++
		}
	}
	r.revision++
	res.Revision = r.revision
	snap := r.snapshotLocked()
	r.mu.Unlock()

	metrics.AddChartPoints(res.Routed, res.Dropped)
	r.notify(snap)
	return res
}

// Column returns a copy of the series a field is routed to.
func (r *Registry) Column(f telemetry.Field) []Sample {
	slot, ok := Route(f)
	if !ok {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.charts[r.index[slot.Chart]].Datasets[slot.Index].Data
	out := make([]Sample, len(src))
	copy(out, src)
	return out
}

// Snapshot returns a copy of every chart at the current revision.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Revision returns the number of renders so far.
func (r *Registry) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

func (r *Registry) clearLocked() {
	for ci := range r.charts {
		for di := range r.charts[ci].Datasets {
			r.charts[ci].Datasets[di].Data = []Sample{}
		}
	}
}

func (r *Registry) appendLocked(p telemetry.Point) bool {
	slot, ok := Route(p.Field)
	if !ok {
		return false
	}
	ds := &r.charts[r.index[slot.Chart]].Datasets[slot.Index]
	ds.Data = append(ds.Data, Sample{X: p.Time, Y: p.Value, Valid: p.Valid})
	return true
}

func (r *Registry) snapshotLocked() Snapshot {
	charts := make([]Chart, len(r.charts))
	for ci, c := range r.charts {
		cc := c
		cc.Datasets = make([]Dataset, len(c.Datasets))
		for di, ds := range c.Datasets {
			dd := ds
			dd.Data = make([]Sample, len(ds.Data))
			copy(dd.Data, ds.Data)
			cc.Datasets[di] = dd
		}
		charts[ci] = cc
	}
	return Snapshot{Revision: r.revision, Charts: charts}
}

func (r *Registry) notify(snap Snapshot) {
	metrics.IncChartRender()

	r.listenersMu.RLock()
	listeners := make([]RenderFunc, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
