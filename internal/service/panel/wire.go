package panel

// Command types a stream client may send.
const (
	CommandSelect = "select"
	CommandToggle = "toggle"
	CommandReset  = "reset"
)

// Message types the server pushes.
const (
	MessagePanel    = "panel"
	MessageError    = "error"
	MessageShutdown = "shutdown"
)

type Command struct {
	Type     string `json:"type"`
	Control  string `json:"control,omitempty"`
	Checkbox string `json:"checkbox,omitempty"`
	Checked  *bool  `json:"checked,omitempty"`
}

type Message struct {
	Type  string     `json:"type"`
	Panel *Snapshot  `json:"panel,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
