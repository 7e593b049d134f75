package panel

import "strings"

const blockSuffix = "_elements"

// Checkbox is the element id of a checkbox that owns an options block.
type Checkbox string

const (
	CheckboxUseAuthentication   Checkbox = "common_use_authentication"
	CheckboxSpecificBSSID       Checkbox = "client_connect_to_ap_with_specific_bssid"
	CheckboxUseCustomMACAddress Checkbox = "client_use_custom_mac_address"
)

// ToggleGroup pairs a checkbox with the block whose visibility it drives.
type ToggleGroup struct {
	Checkbox Checkbox
	Label    string
	Key      string
}

func (g ToggleGroup) Block() string {
	return string(g.Checkbox) + blockSuffix
}

// ToggleGroups is the fixed set of recognized groups, in page order.
var ToggleGroups = []ToggleGroup{
	{Checkbox: CheckboxUseAuthentication, Label: "Use authentication", Key: "u"},
	{Checkbox: CheckboxSpecificBSSID, Label: "Connect to AP with specific BSSID", Key: "b"},
	{Checkbox: CheckboxUseCustomMACAddress, Label: "Use custom MAC address", Key: "m"},
}

// LookupToggleGroup resolves a checkbox id. The short form without the
// "common_"/"client_" prefix is accepted as well.
func LookupToggleGroup(id string) (ToggleGroup, bool) {
	for _, g := range ToggleGroups {
		if string(g.Checkbox) == id || shortName(g.Checkbox) == id {
			return g, true
		}
	}
	return ToggleGroup{}, false
}

func shortName(c Checkbox) string {
	s := string(c)
	for _, prefix := range []string{"common_", "client_"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			return rest
		}
	}
	return s
}
