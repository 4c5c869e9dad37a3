package windows

// Action names a registry mutation.
type Action string

const (
	ActionAdd      Action = "ADD"
	ActionRemove   Action = "REMOVE"
	ActionUpdate   Action = "UPDATE"
	ActionFocus    Action = "FOCUS"
	ActionMinimize Action = "MINIMIZE"
	ActionMaximize Action = "MAXIMIZE"
	ActionRestore  Action = "RESTORE"
	ActionReset    Action = "RESET"
)

// Event describes a committed mutation. Snapshot is the state right after it.
type Event struct {
	Action Action
	// ID is the window the action targeted; empty for ActionReset.
	ID       string
	Snapshot *Snapshot
	// FocusChanged is set when the focused id differs from the previous snapshot.
	FocusChanged bool
}

// Observer receives events in mutation order. Observers run outside the
// registry's write lock but must not mutate the registry synchronously.
type Observer func(Event)

type subscription struct {
	id int
	fn Observer
}
