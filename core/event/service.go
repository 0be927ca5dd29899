package event

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		QueryAllEvents(ctx context.Context) ([]Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		QueryEventsByGroup(ctx context.Context, groupID string) ([]Event, error)
		// QueryEventsByGroupsInRange returns events belonging to any of groupIDs whose
		// date falls within [start, end].
		QueryEventsByGroupsInRange(ctx context.Context, groupIDs []string, start, end time.Time) ([]Event, error)
		// QueryEventsInRange returns all events whose date falls within [start, end].
		QueryEventsInRange(ctx context.Context, start, end time.Time) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, groupID string, ne NewEvent) (Event, error)
		QueryAll(ctx context.Context) ([]Event, error)
		GetByID(ctx context.Context, id string) (Event, error)
		QueryByGroup(ctx context.Context, groupID string) ([]Event, error)
		Update(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, groupID string, ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	evt := Event{
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date.UTC(),
		Location:    ne.Location,
		GroupID:     groupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateEvent(ctx, evt)
}

func (svc *service) QueryAll(ctx context.Context) ([]Event, error) {
	return svc.repo.QueryAllEvents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *service) QueryByGroup(ctx context.Context, groupID string) ([]Event, error) {
	return svc.repo.QueryEventsByGroup(ctx, groupID)
}

func (svc *service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt.Title = ue.Title
	evt.Date = ue.Date.UTC()
	if ue.Description.Valid {
		evt.Description = ue.Description
	}
	if ue.Location.Valid {
		evt.Location = ue.Location
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}
