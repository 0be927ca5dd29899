package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	evt.ID = uuid.New().String()
	query := `
		INSERT INTO events (id, title, description, date, location, group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		evt.ID, evt.Title, evt.Description, evt.Date, evt.Location, evt.GroupID, evt.CreatedAt, evt.UpdatedAt)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "creating event")
	}
	return evt, nil
}

func (repo *eventRepository) QueryAllEvents(ctx context.Context) ([]event.Event, error) {
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM events ORDER BY date`); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return eventsFromRows(rows), nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM events WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "getting event")
	}
	return row.toEvent(), nil
}

func (repo *eventRepository) QueryEventsByGroup(ctx context.Context, groupID string) ([]event.Event, error) {
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM events WHERE group_id = $1 ORDER BY date`, groupID); err != nil {
		return nil, errors.Wrap(err, "querying events by group")
	}
	return eventsFromRows(rows), nil
}

func (repo *eventRepository) QueryEventsByGroupsInRange(ctx context.Context, groupIDs []string, start, end time.Time) ([]event.Event, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT *
		FROM events
		WHERE group_id IN (?)
		  AND date >= ?
		  AND date <= ?
		ORDER BY date`, groupIDs, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []eventRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying events in range")
	}
	return eventsFromRows(rows), nil
}

func (repo *eventRepository) QueryEventsInRange(ctx context.Context, start, end time.Time) ([]event.Event, error) {
	var rows []eventRow
	query := `SELECT * FROM events WHERE date >= $1 AND date <= $2 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, errors.Wrap(err, "querying events in range")
	}
	return eventsFromRows(rows), nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4, updated_at = $5
		WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		evt.Title, evt.Description, evt.Date, evt.Location, evt.UpdatedAt, evt.ID)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM events WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}

func eventsFromRows(rows []eventRow) []event.Event {
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events
}
