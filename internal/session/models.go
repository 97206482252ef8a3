package session

import (
	"encoding/json"
	"time"

	"github.com/shreeshk9/group-trip-planner/internal/region"
)

// Session statuses.
const (
	StatusCollecting = "collecting"
	StatusCompleted  = "completed"
)

// Budget is one participant's acceptable spend range for the whole trip,
// in the shared currency unit.
type Budget struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"gtfield=Min"`
}

// Dates carries the date preferences collected by the form. Only the
// flexibility flag feeds the consensus math.
type Dates struct {
	Flexible bool   `json:"flexible"`
	Note     string `json:"note,omitempty"`
}

// Preference is one participant's submitted trip preference record.
// Immutable once submitted; re-submitting under the same name replaces the
// prior record.
type Preference struct {
	UserID        string                `json:"user_id"`
	Name          string                `json:"name" validate:"required"`
	Region        string                `json:"region" validate:"required"`
	Budget        Budget                `json:"budget"`
	DurationDays  int                   `json:"duration" validate:"min=1"`
	Dates         Dates                 `json:"dates"`
	Activities    region.ActivityVector `json:"activities"`
	Accommodation string                `json:"accommodation" validate:"oneof=budget mid-range luxury"`
	Pace          string                `json:"pace" validate:"oneof=relaxed moderate packed"`
	SubmittedAt   time.Time             `json:"submitted_at"`
}

// Record is one trip-planning session document. Self-contained and
// JSON-serializable; no relational joins.
type Record struct {
	SessionID     string          `json:"session_id"`
	Creator       string          `json:"creator"`
	ExpectedUsers int             `json:"expected_users"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        string          `json:"status"`
	Users         []Preference    `json:"users"`
	Results       json.RawMessage `json:"results"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}
