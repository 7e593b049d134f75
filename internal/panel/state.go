package panel

import "maps"

// State is the whole panel: which control is active, which container is
// shown and which option blocks are expanded. Transitions return a new State
// and never modify the receiver.
type State struct {
	View      View              `json:"view"`
	Container Container         `json:"container"`
	Blocks    map[Checkbox]bool `json:"blocks"`
}

// Initial matches the markup before any click: status shown, blocks collapsed.
func Initial() State {
	return State{
		View:      ViewStatus,
		Container: ContainerStatus,
		Blocks:    map[Checkbox]bool{},
	}
}

func (s State) clone() State {
	next := s
	next.Blocks = make(map[Checkbox]bool, len(s.Blocks))
	maps.Copy(next.Blocks, s.Blocks)
	return next
}

func (s State) SelectStatusView() State {
	next := s.clone()
	next.Container = ContainerStatus
	next.View = ViewStatus
	return next
}

func (s State) SelectConfigureView() State {
	next := s.clone()
	next.Container = ContainerConfigure
	next.View = ViewConfigure
	return next
}

// SelectAboutView only moves the active marker; the visible container stays.
func (s State) SelectAboutView() State {
	next := s.clone()
	next.View = ViewAbout
	return next
}

func (s State) Select(c Control) (State, error) {
	switch c {
	case ControlStatus:
		return s.SelectStatusView(), nil
	case ControlConfigure:
		return s.SelectConfigureView(), nil
	case ControlAbout:
		return s.SelectAboutView(), nil
	default:
		return s, ErrUnknownControl
	}
}

// ToggleCheckbox flips the block of a recognized checkbox on every call,
// independent of the checkbox value. Returns false for unknown ids.
func (s State) ToggleCheckbox(id string) (State, bool) {
	g, ok := LookupToggleGroup(id)
	if !ok {
		return s, false
	}
	next := s.clone()
	next.Blocks[g.Checkbox] = !next.Blocks[g.Checkbox]
	return next, true
}

// SyncCheckbox shows the block iff the checkbox is checked.
func (s State) SyncCheckbox(id string, checked bool) (State, bool) {
	g, ok := LookupToggleGroup(id)
	if !ok {
		return s, false
	}
	next := s.clone()
	next.Blocks[g.Checkbox] = checked
	return next, true
}

// Equal compares by visible effect: a block stored as false equals an
// absent one.
func (s State) Equal(o State) bool {
	if s.View != o.View || s.Container != o.Container {
		return false
	}
	for _, g := range ToggleGroups {
		if s.BlockVisible(g.Checkbox) != o.BlockVisible(g.Checkbox) {
			return false
		}
	}
	return true
}

func (s State) BlockVisible(c Checkbox) bool {
	return s.Blocks[c]
}

func (s State) ContainerVisible(c Container) bool {
	return s.Container == c
}

func (s State) Active(c Control) bool {
	return s.View.Control() == c
}
