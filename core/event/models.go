package event

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core"
)

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	Date        time.Time   `json:"date"` // UTC
	Location    null.String `json:"location"`
	GroupID     string      `json:"group_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewEvent contains information needed to create a new Event.
// The owning group comes from the URL, not the payload.
type NewEvent struct {
	Title       string      `json:"title" validate:"required"`
	Description null.String `json:"description"`
	Date        time.Time   `json:"date" validate:"required"`
	Location    null.String `json:"location"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
type UpdateEvent struct {
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	Date        time.Time   `json:"date"`
	Location    null.String `json:"location"`
}

func (ue *UpdateEvent) Validate(origEvt Event, validate *validator.Validate) error {
	title := core.CleanString(ue.Title)
	if title != "" {
		ue.Title = title
	} else {
		ue.Title = origEvt.Title
	}
	if ue.Date.IsZero() {
		ue.Date = origEvt.Date
	}
	return validate.Struct(ue)
}
