package region

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core"
)

// Predefined region names. Regions are seeded by migration; the API can rename
// descriptions but the set of names is fixed at the schema level.
const (
	Kilimani    = "KILIMANI"
	Langata     = "LANGATA"
	Eastern     = "EASTERN"
	Kiambu      = "KIAMBU"
	Westlands   = "WESTLANDS"
	Diaspora    = "DIASPORA"
	Intercounty = "INTERCOUNTY"
)

var AllRegionNames = []string{Kilimani, Langata, Eastern, Kiambu, Westlands, Diaspora, Intercounty}

type Region struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewRegion contains information needed to create a new Region.
type NewRegion struct {
	Name        string      `json:"name" validate:"required,regionname"`
	Description null.String `json:"description"`
}

func (nr *NewRegion) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nr.Name = strings.ToUpper(core.CleanString(nr.Name))
	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, nr.Name)
}

// UpdateRegion defines what information may be provided to modify an existing Region.
type UpdateRegion struct {
	Description null.String `json:"description"`
}

func (ur UpdateRegion) Validate(validate *validator.Validate) error { return validate.Struct(ur) }
