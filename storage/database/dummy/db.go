package dummydb

import (
	"sync"

	"github.com/Purity-dev-614E/safari-backend/core/attendance"
	"github.com/Purity-dev-614E/safari-backend/core/event"
	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/region"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type (
	DB struct {
		user       *userTable
		region     *regionTable
		group      *groupTable
		event      *eventTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	regionTable struct {
		sync.RWMutex
		table map[string]*region.Region
	}

	groupTable struct {
		sync.RWMutex
		table       map[string]*group.Group
		memberships map[string]*group.Membership // keyed by membership ID
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Event
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Attendance
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		region:     &regionTable{table: make(map[string]*region.Region)},
		group:      &groupTable{table: make(map[string]*group.Group), memberships: make(map[string]*group.Membership)},
		event:      &eventTable{table: make(map[string]*event.Event)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Attendance)},
	}
	return db, nil
}
