package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Purity-dev-614E/safari-backend/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) query() []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		events = append(events, *e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

func (repo *eventRepository) CreateEvent(_ context.Context, evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) QueryAllEvents(_ context.Context) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) QueryEventsByGroup(_ context.Context, groupID string) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var events []event.Event
	for _, evt := range repo.query() {
		if evt.GroupID == groupID {
			events = append(events, evt)
		}
	}
	return events, nil
}

func (repo *eventRepository) QueryEventsByGroupsInRange(_ context.Context, groupIDs []string, start, end time.Time) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = struct{}{}
	}
	var events []event.Event
	for _, evt := range repo.query() {
		if _, ok := wanted[evt.GroupID]; !ok {
			continue
		}
		if inRange(evt.Date, start, end) {
			events = append(events, evt)
		}
	}
	return events, nil
}

func (repo *eventRepository) QueryEventsInRange(_ context.Context, start, end time.Time) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var events []event.Event
	for _, evt := range repo.query() {
		if inRange(evt.Date, start, end) {
			events = append(events, evt)
		}
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[evt.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}
