package panel

import (
	"slices"
	"strings"
)

const (
	ClassShow   = "show"
	ClassHidden = "hidden"
	ClassActive = "active"
)

// ManagedClasses are the only classes a Render owns. Clients strip these
// from every rendered element before applying the new set.
var ManagedClasses = []string{ClassShow, ClassHidden, ClassActive}

// Render maps element ids to their managed classes. Elements without any
// managed class map to an empty slice.
type Render map[string][]string

func (s State) Render() Render {
	r := make(Render, len(Containers)+len(Controls)+len(ToggleGroups))

	for _, c := range Containers {
		if s.ContainerVisible(c) {
			r[string(c)] = []string{ClassShow}
		} else {
			r[string(c)] = []string{ClassHidden}
		}
	}

	for _, c := range Controls {
		if s.Active(c) {
			r[string(c)] = []string{ClassActive}
		} else {
			r[string(c)] = []string{}
		}
	}

	for _, g := range ToggleGroups {
		if s.BlockVisible(g.Checkbox) {
			r[g.Block()] = []string{}
		} else {
			r[g.Block()] = []string{ClassHidden}
		}
	}

	return r
}

// Class returns the class attribute value for an element id.
func (r Render) Class(id string) string {
	return strings.Join(r[id], " ")
}

func (r Render) Has(id, class string) bool {
	return slices.Contains(r[id], class)
}
