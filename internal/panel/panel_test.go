package panel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func priorStates() map[string]State {
	configure := Initial().SelectConfigureView()
	about := Initial().SelectAboutView()
	aboutOverConfigure := configure.SelectAboutView()
	expanded, _ := configure.ToggleCheckbox(string(CheckboxUseAuthentication))
	return map[string]State{
		"initial":              Initial(),
		"configure":            configure,
		"about":                about,
		"about over configure": aboutOverConfigure,
		"configure expanded":   expanded,
	}
}

func TestSelectStatusView(t *testing.T) {
	t.Parallel()

	for name, prior := range priorStates() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := prior.SelectStatusView().Render()

			if !r.Has(string(ContainerStatus), ClassShow) || r.Has(string(ContainerStatus), ClassHidden) {
				t.Errorf("status container classes = %v, want [show]", r[string(ContainerStatus)])
			}
			if !r.Has(string(ContainerConfigure), ClassHidden) {
				t.Errorf("configure container classes = %v, want [hidden]", r[string(ContainerConfigure)])
			}
			assertOnlyActive(t, r, ControlStatus)
		})
	}
}

func TestSelectConfigureView(t *testing.T) {
	t.Parallel()

	for name, prior := range priorStates() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := prior.SelectConfigureView().Render()

			if !r.Has(string(ContainerConfigure), ClassShow) {
				t.Errorf("configure container classes = %v, want [show]", r[string(ContainerConfigure)])
			}
			if !r.Has(string(ContainerStatus), ClassHidden) {
				t.Errorf("status container classes = %v, want [hidden]", r[string(ContainerStatus)])
			}
			assertOnlyActive(t, r, ControlConfigure)
		})
	}
}

func TestSelectAboutViewKeepsContainers(t *testing.T) {
	t.Parallel()

	for name, prior := range priorStates() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			before := prior.Render()
			after := prior.SelectAboutView().Render()

			for _, c := range Containers {
				if diff := cmp.Diff(before[string(c)], after[string(c)]); diff != "" {
					t.Errorf("container %s changed (-before +after):\n%s", c, diff)
				}
			}
			assertOnlyActive(t, after, ControlAbout)
		})
	}
}

func TestToggleCheckboxParity(t *testing.T) {
	t.Parallel()

	for _, g := range ToggleGroups {
		for clicks := range 6 {
			t.Run(string(g.Checkbox), func(t *testing.T) {
				t.Parallel()

				s := Initial()
				for range clicks {
					var ok bool
					s, ok = s.ToggleCheckbox(string(g.Checkbox))
					if !ok {
						t.Fatalf("ToggleCheckbox(%q) not recognized", g.Checkbox)
					}
				}

				wantVisible := clicks%2 == 1
				if got := s.BlockVisible(g.Checkbox); got != wantVisible {
					t.Errorf("after %d clicks visible = %v, want %v", clicks, got, wantVisible)
				}
				if got := s.Render().Has(g.Block(), ClassHidden); got == wantVisible {
					t.Errorf("after %d clicks %s hidden = %v", clicks, g.Block(), got)
				}
			})
		}
	}
}

func TestToggleCheckboxIndependentGroups(t *testing.T) {
	t.Parallel()

	s, _ := Initial().ToggleCheckbox(string(CheckboxSpecificBSSID))

	if !s.BlockVisible(CheckboxSpecificBSSID) {
		t.Error("toggled block should be visible")
	}
	for _, other := range []Checkbox{CheckboxUseAuthentication, CheckboxUseCustomMACAddress} {
		if s.BlockVisible(other) {
			t.Errorf("block %s should be untouched", other)
		}
	}
}

func TestToggleCheckboxShortNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want Checkbox
	}{
		{id: "use_authentication", want: CheckboxUseAuthentication},
		{id: "connect_to_ap_with_specific_bssid", want: CheckboxSpecificBSSID},
		{id: "use_custom_mac_address", want: CheckboxUseCustomMACAddress},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			s, ok := Initial().ToggleCheckbox(tt.id)
			if !ok {
				t.Fatalf("ToggleCheckbox(%q) not recognized", tt.id)
			}
			if !s.BlockVisible(tt.want) {
				t.Errorf("block %s not visible", tt.want)
			}
		})
	}
}

func TestToggleCheckboxUnknownID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "client_ssid", "common_use_authentication_elements", "USE_AUTHENTICATION"} {
		t.Run(id, func(t *testing.T) {
			t.Parallel()

			prior := Initial().SelectConfigureView()
			next, ok := prior.ToggleCheckbox(id)
			if ok {
				t.Fatalf("ToggleCheckbox(%q) recognized", id)
			}
			if diff := cmp.Diff(prior.Render(), next.Render()); diff != "" {
				t.Errorf("render changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSyncCheckbox(t *testing.T) {
	t.Parallel()

	s := Initial()
	for _, checked := range []bool{true, true, false, false, true} {
		var ok bool
		s, ok = s.SyncCheckbox(string(CheckboxUseCustomMACAddress), checked)
		if !ok {
			t.Fatal("SyncCheckbox not recognized")
		}
		if got := s.BlockVisible(CheckboxUseCustomMACAddress); got != checked {
			t.Errorf("visible = %v, want %v", got, checked)
		}
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	t.Parallel()

	prior := Initial()
	_, _ = prior.ToggleCheckbox(string(CheckboxUseAuthentication))
	_ = prior.SelectConfigureView()

	if diff := cmp.Diff(Initial(), prior); diff != "" {
		t.Errorf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestStateEqual(t *testing.T) {
	t.Parallel()

	collapsed, _ := Initial().SyncCheckbox(string(CheckboxSpecificBSSID), false)
	expanded, _ := Initial().ToggleCheckbox(string(CheckboxSpecificBSSID))

	tests := []struct {
		name string
		a, b State
		want bool
	}{
		{name: "initial", a: Initial(), b: Initial(), want: true},
		{name: "explicit false equals absent", a: Initial(), b: collapsed, want: true},
		{name: "block differs", a: Initial(), b: expanded, want: false},
		{name: "view differs", a: Initial(), b: Initial().SelectAboutView(), want: false},
		{name: "reselect is equal", a: Initial().SelectConfigureView(), b: Initial().SelectConfigureView().SelectConfigureView(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectUnknownControl(t *testing.T) {
	t.Parallel()

	prior := Initial().SelectConfigureView()
	next, err := prior.Select(Control("main_toolbar_help"))
	if !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("Select() error = %v, want ErrUnknownControl", err)
	}
	if diff := cmp.Diff(prior, next); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
}

func TestParseControl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Control
		wantErr bool
	}{
		{in: "main_toolbar_status", want: ControlStatus},
		{in: "status", want: ControlStatus},
		{in: "configure", want: ControlConfigure},
		{in: "main_toolbar_about", want: ControlAbout},
		{in: "help", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseControl(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseControl(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseControl(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func assertOnlyActive(t *testing.T, r Render, want Control) {
	t.Helper()

	for _, c := range Controls {
		active := r.Has(string(c), ClassActive)
		if c == want && !active {
			t.Errorf("%s not active", c)
		}
		if c != want && active {
			t.Errorf("%s active, want only %s", c, want)
		}
	}
}
