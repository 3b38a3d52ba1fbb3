package drag

import (
	"sync"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// Overlay holds accepted date changes that persistence has not confirmed yet.
// It is the source of truth for displayed dates until it is reset.
type Overlay struct {
	mu        sync.RWMutex
	overrides map[string]domain.DateOverride
}

// NewOverlay creates an empty Overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		overrides: make(map[string]domain.DateOverride),
	}
}

// Set records an override, merging with any pending one. Nil fields keep the previous value.
func (o *Overlay) Set(taskID string, override domain.DateOverride) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur := o.overrides[taskID]
	if override.Start != nil {
		start := *override.Start
		cur.Start = &start
	}
	if override.End != nil {
		end := *override.End
		cur.End = &end
	}
	o.overrides[taskID] = cur
}

// Get returns the pending override for a task.
func (o *Overlay) Get(taskID string) (domain.DateOverride, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	override, ok := o.overrides[taskID]
	return override, ok
}

// Len returns the number of tasks with pending overrides.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return len(o.overrides)
}

// Snapshot returns a copy of all pending overrides.
func (o *Overlay) Snapshot() map[string]domain.DateOverride {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]domain.DateOverride, len(o.overrides))
	for id, override := range o.overrides {
		out[id] = override
	}
	return out
}

// Reset discards every pending override and returns how many were dropped.
func (o *Overlay) Reset() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.overrides)
	o.overrides = make(map[string]domain.DateOverride)
	return n
}

// Apply returns the tasks as they should be displayed.
// Overridden tasks are copies; the input tasks are never modified.
func (o *Overlay) Apply(tasks []*domain.Task) []*domain.Task {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]*domain.Task, len(tasks))
	for i, task := range tasks {
		override, ok := o.overrides[task.ID]
		if !ok {
			out[i] = task
			continue
		}
		cp := *task
		if override.Start != nil {
			start := *override.Start
			cp.StartDate = &start
		}
		if override.End != nil {
			end := *override.End
			cp.DueDate = &end
		}
		out[i] = &cp
	}
	return out
}
