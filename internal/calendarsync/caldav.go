package calendarsync

import (
	"context"
	"time"

	"github.com/olafkfreund/comunicado-sub004/internal/domain/calendar"
)

// RemoteEvent is the CalDAV collaborator's output (spec §6): the engine
// treats icalendar_data opaquely and forwards it to an external parser.
type RemoteEvent struct {
	URL           string
	ETag          string
	ICalendarData string
}

// CalDAVQuery parameterizes GetEvents.
type CalDAVQuery struct {
	Start            *time.Time
	End              *time.Time
	ComponentFilter  string
	ExpandRecurrence bool
}

// CalDAVCollaborator is the external collaborator contract the engine
// consumes for CalDAV sources (spec §6). The engine never parses
// iCalendar itself.
type CalDAVCollaborator interface {
	TestConnection(ctx context.Context) error
	DiscoverCalendars(ctx context.Context) ([]CalendarMeta, error)
	GetEvents(ctx context.Context, url string, query CalDAVQuery) ([]RemoteEvent, error)
}

// EventParser turns one RemoteEvent's opaque icalendar_data into a
// domain Event. The engine forwards to this collaborator rather than
// parsing iCalendar itself (spec §4.F scope).
type EventParser interface {
	Parse(icalendarData string) (*calendar.Event, error)
}
