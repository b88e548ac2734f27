package locking

import (
	"context"
	"errors"
	"sync"

	"github.com/go-redsync/redsync/v4"
)

var ErrLocked = errors.New("resource locked")

// RedisLocker serializes work across processes with redsync mutexes.
type RedisLocker struct {
	rs *redsync.Redsync
}

func NewRedisLocker(rs *redsync.Redsync) *RedisLocker {
	return &RedisLocker{rs}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Join(ErrLocked, err)
	}
	return func() {
		// nolint:errcheck
		mutex.UnlockContext(context.WithoutCancel(ctx))
	}, nil
}

// LocalLocker serializes work inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
