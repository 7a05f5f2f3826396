package intensity

import "weak"

// Target is anything that hosts an effect and accepts intensity pushes.
type Target interface {
	// Apply fans the settings out into the target's local knobs.
	Apply(Settings)
	// Valid reports whether the target still exists and is attached
	// to an active presentation surface.
	Valid() bool
}

// Handle identifies a registration. A handle outlived by its slot is stale
// and is ignored by every Registry method.
type Handle struct {
	index int32
	gen   uint32
}

type slot struct {
	gen     uint32
	used    bool
	key     any // weak.Pointer[T] of the registered target
	resolve func() Target
}

// Registry pushes Settings to every registered, still-valid target.
//
// It only holds weak references: a target that nobody else references is
// collected and silently pruned. One Registry is created by the application's
// composition root and handed to every control that needs it.
//
// A Registry is not safe for concurrent use. Registration, unregistration and
// broadcasts all run on the animation thread that drives ticks.
type Registry struct {
	slots   []slot
	free    []int32
	index   map[any]Handle
	count   int
	current Settings

	delivering bool
	pending    *Settings
}

// NewRegistry creates a registry whose Current settings start at initial.
func NewRegistry(initial Settings) *Registry {
	return &Registry{
		index:   make(map[any]Handle),
		current: initial.Clamped(),
	}
}

// Register adds a non-owning reference to t. Registering the same target
// again returns the existing handle and has no other effect.
func Register[T any, PT interface {
	*T
	Target
}](r *Registry, t PT) Handle {
	if r == nil || t == nil {
		return Handle{}
	}
	wp := weak.Make((*T)(t))
	if h, ok := r.index[wp]; ok && r.Alive(h) {
		return h
	}
	resolve := func() Target {
		p := wp.Value()
		if p == nil {
			return nil
		}
		return PT(p)
	}
	return r.insert(wp, resolve)
}

// Unregister removes t. It is safe to call for targets that were never
// registered or were already removed.
func Unregister[T any, PT interface {
	*T
	Target
}](r *Registry, t PT) {
	if r == nil || t == nil {
		return
	}
	if h, ok := r.index[weak.Make((*T)(t))]; ok {
		r.Remove(h)
	}
}

func (r *Registry) insert(key any, resolve func() Target) Handle {
	if len(r.free) == 0 {
		r.pruneCollected()
	}

	var idx int32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = int32(len(r.slots) - 1)
	}

	s := &r.slots[idx]
	s.gen++
	s.used = true
	s.key = key
	s.resolve = resolve
	r.count++

	h := Handle{index: idx, gen: s.gen}
	r.index[key] = h
	return h
}

// Remove drops the registration behind h. Stale handles are ignored.
func (r *Registry) Remove(h Handle) {
	if !r.holds(h) {
		return
	}
	r.release(h.index)
}

func (r *Registry) release(idx int32) {
	s := &r.slots[idx]
	if h, ok := r.index[s.key]; ok && h.index == idx {
		delete(r.index, s.key)
	}
	s.used = false
	s.key = nil
	s.resolve = nil
	r.free = append(r.free, idx)
	r.count--
}

func (r *Registry) holds(h Handle) bool {
	if h.index < 0 || int(h.index) >= len(r.slots) {
		return false
	}
	s := &r.slots[h.index]
	return s.used && s.gen == h.gen
}

// Alive reports whether h still refers to a registered target that has not
// been collected.
func (r *Registry) Alive(h Handle) bool {
	if !r.holds(h) {
		return false
	}
	return r.slots[h.index].resolve() != nil
}

// Broadcast clamps s, records it as Current and applies it once to every
// registered target that is alive and valid. Collected and invalid targets
// are evicted. It returns the number of targets that received s.
//
// A Broadcast issued from inside Apply is deferred until the current pass
// completes; only the latest deferred settings are delivered.
func (r *Registry) Broadcast(s Settings) int {
	s = s.Clamped()
	r.current = s
	if r.delivering {
		r.pending = &s
		return 0
	}

	r.delivering = true
	defer func() { r.delivering = false }()

	delivered := r.deliver(s)
	for r.pending != nil {
		next := *r.pending
		r.pending = nil
		delivered = r.deliver(next)
	}
	return delivered
}

func (r *Registry) deliver(s Settings) int {
	// Snapshot generations so targets registered mid-pass wait for the next one.
	n := len(r.slots)
	gens := make([]uint32, n)
	for i := 0; i < n; i++ {
		if r.slots[i].used {
			gens[i] = r.slots[i].gen
		}
	}

	delivered := 0
	for i := 0; i < n; i++ {
		sl := &r.slots[i]
		if !sl.used || sl.gen != gens[i] {
			continue
		}
		t := sl.resolve()
		if t == nil || !t.Valid() {
			r.release(int32(i))
			continue
		}
		t.Apply(s)
		delivered++
	}
	return delivered
}

// Prune evicts collected and invalid targets and returns how many were removed.
func (r *Registry) Prune() int {
	removed := 0
	for i := range r.slots {
		sl := &r.slots[i]
		if !sl.used {
			continue
		}
		if t := sl.resolve(); t == nil || !t.Valid() {
			r.release(int32(i))
			removed++
		}
	}
	return removed
}

// pruneCollected evicts only targets that have been garbage collected.
func (r *Registry) pruneCollected() {
	for i := range r.slots {
		sl := &r.slots[i]
		if sl.used && sl.resolve() == nil {
			r.release(int32(i))
		}
	}
}

// Len returns the number of registrations, including collected targets
// that have not been pruned yet.
func (r *Registry) Len() int {
	return r.count
}

// Current returns the most recently broadcast settings.
func (r *Registry) Current() Settings {
	return r.current
}
