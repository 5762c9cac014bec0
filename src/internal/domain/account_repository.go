package domain

import "context"

// AccountRepository loads accounts by replaying their events and persists
// the events a command produced. Save never rewrites existing history.
type AccountRepository interface {
	Load(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, id string, events []Event) error
}

// AccountLocker serialises writers of one account id. The returned unlock
// must be called once the new events are persisted.
type AccountLocker interface {
	Lock(ctx context.Context, accountID string) (unlock func(), err error)
}
