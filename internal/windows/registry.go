package windows

import "sync"

// Config holds construction options for a Registry.
type Config struct {
	// Defaults is the geometry of windows added without overrides. The zero
	// value selects DefaultDefaults.
	Defaults Defaults
}

// Registry is the authoritative store of open windows, the focused window
// and the stacking order. All methods are safe for concurrent use; each
// mutation is atomic and publishes a new Snapshot.
//
// Operations that name an unknown window are silent no-ops. Mutators report
// whether the window existed so callers do not have to re-query.
type Registry struct {
	mu       sync.RWMutex
	snap     *Snapshot
	defaults Defaults

	// notifyMu serializes commits with their event delivery so observers
	// see events in commit order. It is always taken before mu.
	notifyMu sync.Mutex

	obsMu     sync.Mutex
	observers []subscription
	nextObsID int
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	defaults := cfg.Defaults
	if defaults == (Defaults{}) {
		defaults = DefaultDefaults()
	}
	return &Registry{
		snap:     emptySnapshot(0),
		defaults: defaults,
	}
}

// Defaults returns the geometry given to windows added without overrides.
func (r *Registry) Defaults() Defaults {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults
}

// SetDefaults changes the geometry used by later AddWindow calls.
func (r *Registry) SetDefaults(d Defaults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = d
}

// Snapshot returns the current immutable state.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Version returns the current mutation counter.
func (r *Registry) Version() uint64 {
	return r.Snapshot().Version()
}

// Len returns the number of open windows.
func (r *Registry) Len() int {
	return r.Snapshot().Len()
}

// GetWindow returns a copy of the window with the given id.
func (r *Registry) GetWindow(id string) (Window, bool) {
	return r.Snapshot().Get(id)
}

// GetTopZIndex returns BaseZIndex when the registry is empty, otherwise the
// highest z-index in use.
func (r *Registry) GetTopZIndex() int {
	return r.Snapshot().TopZIndex()
}

// FocusedID returns the focused window id, if any.
func (r *Registry) FocusedID() (string, bool) {
	return r.Snapshot().FocusedID()
}

// AddWindow creates a window from the registry defaults with patch merged
// over them, puts it on top of the stack and focuses it. Adding an id that
// already exists replaces the old record and brings it to the front.
func (r *Registry) AddWindow(id string, patch Patch) Window {
	var added Window
	r.commit(ActionAdd, id, func(cur *Snapshot) (*Snapshot, bool, bool) {
		w := patch.apply(Window{
			ID:       id,
			Position: r.defaults.Position,
			Size:     r.defaults.Size,
			State:    StateNormal,
		})
		w.ZIndex = cur.TopZIndex() + 1

		next := cur.cloneWindows()
		next[id] = w
		added = w
		return &Snapshot{windows: next, focused: id}, true, true
	})
	return added
}

// RemoveWindow deletes a window, clearing focus if it held it. The remaining
// windows keep their z-index values.
func (r *Registry) RemoveWindow(id string) bool {
	return r.commit(ActionRemove, id, func(cur *Snapshot) (*Snapshot, bool, bool) {
		if _, ok := cur.windows[id]; !ok {
			return nil, false, false
		}
		next := cur.cloneWindows()
		delete(next, id)
		focused := cur.focused
		if focused == id {
			focused = ""
		}
		return &Snapshot{windows: next, focused: focused}, true, true
	})
}

// UpdateWindow merges patch into an existing window. It never creates a
// window and never changes focus or z-index.
func (r *Registry) UpdateWindow(id string, patch Patch) bool {
	return r.modify(ActionUpdate, id, patch.apply)
}

// FocusWindow focuses a window and moves it to the top of the stack.
func (r *Registry) FocusWindow(id string) bool {
	return r.commit(ActionFocus, id, func(cur *Snapshot) (*Snapshot, bool, bool) {
		w, ok := cur.windows[id]
		if !ok {
			return nil, false, false
		}
		w.ZIndex = cur.TopZIndex() + 1
		next := cur.cloneWindows()
		next[id] = w
		return &Snapshot{windows: next, focused: id}, true, true
	})
}

// MinimizeWindow minimizes a window. A maximized window loses its maximized
// state. Focus and z-index are unchanged.
func (r *Registry) MinimizeWindow(id string) bool {
	return r.modify(ActionMinimize, id, func(w Window) Window {
		w.State = StateMinimized
		return w
	})
}

// MaximizeWindow toggles the maximized state. A maximized window returns to
// normal; any other window becomes maximized, leaving minimized.
func (r *Registry) MaximizeWindow(id string) bool {
	return r.modify(ActionMaximize, id, func(w Window) Window {
		if w.State == StateMaximized {
			w.State = StateNormal
		} else {
			w.State = StateMaximized
		}
		return w
	})
}

// RestoreWindow returns a window to the normal state. It is idempotent.
func (r *Registry) RestoreWindow(id string) bool {
	return r.modify(ActionRestore, id, func(w Window) Window {
		w.State = StateNormal
		return w
	})
}

// Reset replaces the whole state with an empty registry.
func (r *Registry) Reset() {
	r.commit(ActionReset, "", func(cur *Snapshot) (*Snapshot, bool, bool) {
		return emptySnapshot(0), true, true
	})
}

// Subscribe registers an observer for committed mutations and returns a
// function that removes it.
func (r *Registry) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	r.obsMu.Lock()
	id := r.nextObsID
	r.nextObsID++
	r.observers = append(r.observers, subscription{id: id, fn: fn})
	r.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.obsMu.Lock()
			defer r.obsMu.Unlock()
			for i, sub := range r.observers {
				if sub.id == id {
					r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// modify applies fn to an existing window without touching focus or order.
// Nothing is committed when fn returns the window unchanged.
func (r *Registry) modify(action Action, id string, fn func(Window) Window) bool {
	return r.commit(action, id, func(cur *Snapshot) (*Snapshot, bool, bool) {
		w, ok := cur.windows[id]
		if !ok {
			return nil, false, false
		}
		updated := fn(w)
		updated.ID = w.ID
		updated.ZIndex = w.ZIndex
		if updated == w {
			return nil, true, false
		}
		next := cur.cloneWindows()
		next[id] = updated
		return &Snapshot{windows: next, focused: cur.focused}, true, true
	})
}

// commit runs fn against the current snapshot under the write lock. fn
// reports whether the target existed and whether it produced a new state;
// only new states are published and announced. The version of the returned
// snapshot is assigned here.
func (r *Registry) commit(action Action, id string, fn func(cur *Snapshot) (next *Snapshot, found bool, changed bool)) bool {
	// Lock order is notifyMu then mu. Observers run with only notifyMu held,
	// so they can read the registry while other writers queue behind them.
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	cur := r.snap
	next, found, changed := fn(cur)
	if !changed || next == nil {
		r.mu.Unlock()
		return found
	}
	next.version = cur.version + 1
	r.snap = next
	r.mu.Unlock()

	r.dispatch(Event{
		Action:       action,
		ID:           id,
		Snapshot:     next,
		FocusChanged: cur.focused != next.focused,
	})
	return found
}

func (r *Registry) dispatch(ev Event) {
	r.obsMu.Lock()
	subs := make([]subscription, len(r.observers))
	copy(subs, r.observers)
	r.obsMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
