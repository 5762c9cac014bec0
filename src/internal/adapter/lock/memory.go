// Package lock provides single-writer guards for account ids.
package lock

import (
	"context"
	"sync"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

var _ domain.AccountLocker = (*KeyedMutex)(nil)

// KeyedMutex serialises writers per account id inside one process.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (k *KeyedMutex) Lock(ctx context.Context, accountID string) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[accountID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[accountID] = s
	}
	s.waiters++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(accountID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			k.release(accountID, s)
		})
	}, nil
}

func (k *KeyedMutex) release(accountID string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(k.slots, accountID)
	}
}
