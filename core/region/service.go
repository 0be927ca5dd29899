package region

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core"
)

var (
	// errors
	ErrNotFound   = errors.New("region not found")
	ErrNameExists = errors.New("a region with this name already exists")

	regionNameTag  = "regionname"
	regionNameText = "invalid region name"
)

type (
	Repository interface {
		CheckRegionNameUniqueness(ctx context.Context, name string) error
		CreateRegion(ctx context.Context, reg Region) (Region, error)
		QueryAllRegions(ctx context.Context) ([]Region, error)
		GetRegionByID(ctx context.Context, id string) (Region, error)
		GetRegionByName(ctx context.Context, name string) (Region, error)
		UpdateRegion(ctx context.Context, reg Region) (Region, error)
		DeleteRegionsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nr NewRegion) (Region, error)
		QueryAll(ctx context.Context) ([]Region, error)
		GetByID(ctx context.Context, id string) (Region, error)
		GetByName(ctx context.Context, name string) (Region, error)
		Update(ctx context.Context, id string, ur UpdateRegion) (Region, error)
		Delete(ctx context.Context, ids ...string) error
		CheckNameUniqueness(ctx context.Context, name string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RegisterValidators registers region validators and their translations.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(regionNameTag, func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		for _, n := range AllRegionNames {
			if name == n {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, regionNameTag, regionNameText)
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckRegionNameUniqueness(ctx, name); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nr NewRegion) (Region, error) {
	now := time.Now().UTC()
	reg := Region{
		Name:        nr.Name,
		Description: nr.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateRegion(ctx, reg)
}

func (svc *service) QueryAll(ctx context.Context) ([]Region, error) {
	return svc.repo.QueryAllRegions(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Region, error) {
	return svc.repo.GetRegionByID(ctx, id)
}

func (svc *service) GetByName(ctx context.Context, name string) (Region, error) {
	return svc.repo.GetRegionByName(ctx, name)
}

func (svc *service) Update(ctx context.Context, id string, ur UpdateRegion) (Region, error) {
	reg, err := svc.repo.GetRegionByID(ctx, id)
	if err != nil {
		return Region{}, err
	}
	if ur.Description.Valid {
		reg.Description = ur.Description
	}
	reg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRegion(ctx, reg)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRegionsByID(ctx, ids...)
}
