package panel

import (
	"errors"
	"fmt"
)

var ErrUnknownControl = errors.New("unknown toolbar control")

// View is the toolbar control currently marked active.
type View string

const (
	ViewStatus    View = "status"
	ViewConfigure View = "configure"
	ViewAbout     View = "about"
)

func (v View) Control() Control {
	switch v {
	case ViewConfigure:
		return ControlConfigure
	case ViewAbout:
		return ControlAbout
	default:
		return ControlStatus
	}
}

// Container is the content region that is currently shown.
// About has no container of its own.
type Container string

const (
	ContainerStatus    Container = "container_client_status"
	ContainerConfigure Container = "container_configure"
)

var Containers = []Container{ContainerStatus, ContainerConfigure}

// Control is the element id of a toolbar button.
type Control string

const (
	ControlStatus    Control = "main_toolbar_status"
	ControlConfigure Control = "main_toolbar_configure"
	ControlAbout     Control = "main_toolbar_about"
)

var Controls = []Control{ControlStatus, ControlConfigure, ControlAbout}

// ParseControl accepts the element id or the bare view name.
func ParseControl(s string) (Control, error) {
	switch s {
	case string(ControlStatus), string(ViewStatus):
		return ControlStatus, nil
	case string(ControlConfigure), string(ViewConfigure):
		return ControlConfigure, nil
	case string(ControlAbout), string(ViewAbout):
		return ControlAbout, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownControl, s)
	}
}

func (c Control) View() View {
	switch c {
	case ControlConfigure:
		return ViewConfigure
	case ControlAbout:
		return ViewAbout
	default:
		return ViewStatus
	}
}
