package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/region"
)

type regionRepository struct {
	db *sqlx.DB
}

var _ region.Repository = (*regionRepository)(nil) // interface compliance check

func NewRegionRepository(db *sqlx.DB) region.Repository {
	return &regionRepository{db: db}
}

func (repo *regionRepository) CheckRegionNameUniqueness(ctx context.Context, name string) error {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM regions WHERE name = $1`, name); err != nil {
		return errors.Wrap(err, "checking region name uniqueness")
	}
	if count > 0 {
		return region.ErrNameExists
	}
	return nil
}

func (repo *regionRepository) CreateRegion(ctx context.Context, reg region.Region) (region.Region, error) {
	reg.ID = uuid.New().String()
	query := `
		INSERT INTO regions (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, query, reg.ID, reg.Name, reg.Description, reg.CreatedAt, reg.UpdatedAt); err != nil {
		if isUniqueViolation(err, "regions_name_key") {
			return region.Region{}, region.ErrNameExists
		}
		return region.Region{}, errors.Wrap(err, "creating region")
	}
	return reg, nil
}

func (repo *regionRepository) QueryAllRegions(ctx context.Context) ([]region.Region, error) {
	var rows []regionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM regions ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying regions")
	}
	regions := make([]region.Region, 0, len(rows))
	for _, row := range rows {
		regions = append(regions, row.toRegion())
	}
	return regions, nil
}

func (repo *regionRepository) GetRegionByID(ctx context.Context, id string) (region.Region, error) {
	var row regionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM regions WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return region.Region{}, region.ErrNotFound
		}
		return region.Region{}, errors.Wrap(err, "getting region")
	}
	return row.toRegion(), nil
}

func (repo *regionRepository) GetRegionByName(ctx context.Context, name string) (region.Region, error) {
	var row regionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM regions WHERE name = $1`, name); err != nil {
		if err == sql.ErrNoRows {
			return region.Region{}, region.ErrNotFound
		}
		return region.Region{}, errors.Wrap(err, "getting region")
	}
	return row.toRegion(), nil
}

func (repo *regionRepository) UpdateRegion(ctx context.Context, reg region.Region) (region.Region, error) {
	query := `UPDATE regions SET description = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, reg.Description, reg.UpdatedAt, reg.ID)
	if err != nil {
		return region.Region{}, errors.Wrap(err, "updating region")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return region.Region{}, region.ErrNotFound
	}
	return reg, nil
}

func (repo *regionRepository) DeleteRegionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM regions WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting regions")
	}
	return nil
}
