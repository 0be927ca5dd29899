package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Purity-dev-614E/safari-backend/core/region"
)

type regionRepository struct {
	db *regionTable
}

var _ region.Repository = (*regionRepository)(nil) // interface compliance check

func NewRegionRepository(db *DB) region.Repository {
	return &regionRepository{db: db.region}
}

func (repo *regionRepository) query() []region.Region {
	regions := make([]region.Region, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		regions = append(regions, *r)
	}
	return regions
}

func (repo *regionRepository) CheckRegionNameUniqueness(_ context.Context, name string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, reg := range repo.query() {
		if reg.Name == name {
			return region.ErrNameExists
		}
	}
	return nil
}

func (repo *regionRepository) CreateRegion(_ context.Context, reg region.Region) (region.Region, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	reg.ID = uuid.New().String()
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *regionRepository) QueryAllRegions(_ context.Context) ([]region.Region, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *regionRepository) GetRegionByID(_ context.Context, id string) (region.Region, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return region.Region{}, region.ErrNotFound
}

func (repo *regionRepository) GetRegionByName(_ context.Context, name string) (region.Region, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, reg := range repo.query() {
		if reg.Name == name {
			return reg, nil
		}
	}
	return region.Region{}, region.ErrNotFound
}

func (repo *regionRepository) UpdateRegion(_ context.Context, reg region.Region) (region.Region, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[reg.ID]; !ok {
		return region.Region{}, region.ErrNotFound
	}
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *regionRepository) DeleteRegionsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
