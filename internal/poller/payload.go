package poller

import "net/url"

// Payload is the fixed status body posted on every tick.
type Payload struct {
	Name string `json:"name"`
	City string `json:"city"`
}

var DefaultPayload = Payload{Name: "Donald Duck", City: "Duckburg"}

func (p Payload) Values() url.Values {
	return url.Values{
		"name": {p.Name},
		"city": {p.City},
	}
}

func (p Payload) Encode() string {
	return p.Values().Encode()
}
