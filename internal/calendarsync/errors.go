package calendarsync

import "errors"

var (
	ErrConfigNotFound   = errors.New("calendarsync: calendar config not found")
	ErrConfigExists     = errors.New("calendarsync: calendar config already exists")
	ErrCalendarDisabled = errors.New("calendarsync: calendar is disabled")
	ErrAlreadySyncing   = errors.New("calendarsync: a sync is already in progress for this calendar")
	ErrNoCalDAVSource   = errors.New("calendarsync: no CalDAV collaborator configured")
	ErrNoGoogleSource   = errors.New("calendarsync: no Google event repository configured")
	ErrCancelled        = errors.New("calendarsync: sync cancelled")
)
