package panel

import (
	"context"

	domain "github.com/garrettladley/wext/internal/panel"
)

// Snapshot is a session's panel state together with its rendered classes.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	Seq       uint64        `json:"seq"`
	State     domain.State  `json:"state"`
	Render    domain.Render `json:"render"`
}

type Service interface {
	// Get returns the session's panel; unknown sessions start at the initial state.
	Get(ctx context.Context, sessionID string) (Snapshot, error)

	// Select activates a toolbar control. Unknown controls return
	// domain.ErrUnknownControl and leave the state untouched.
	Select(ctx context.Context, sessionID string, control string) (Snapshot, error)

	// Toggle flips the block of a checkbox, or sets it to checked when the
	// client reports a value. Unknown checkboxes are ignored.
	Toggle(ctx context.Context, sessionID string, checkbox string, checked *bool) (Snapshot, error)

	Reset(ctx context.Context, sessionID string) (Snapshot, error)

	// Subscribe streams every committed change of the session.
	Subscribe(ctx context.Context, sessionID string) (<-chan Snapshot, func(), error)
}
