package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 30 * time.Second

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Loader memoizes fn results per key. Concurrent misses for one key share a
// single call; stale entries are served while a refresh runs in the
// background. Errors are never cached.
type Loader[T any] struct {
	entries *xsync.Map[string, entry[T]]
	sfg     singleflight.Group
	ttl     time.Duration
}

func New[T any](ttl time.Duration) *Loader[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader[T]{
		entries: xsync.NewMap[string, entry[T]](),
		ttl:     ttl,
	}
}

func (l *Loader[T]) Get(key string, fn func() (T, error)) (T, error) {
	e, ok := l.entries.Load(key)
	if ok {
		if time.Since(e.fetchedAt) > l.ttl {
			go func() {
				l.sfg.Do(key, func() (any, error) {
					result, err := fn()
					if err == nil {
						l.entries.Store(key, entry[T]{value: result, fetchedAt: time.Now()})
					}
					return nil, nil
				})
			}()
		}
		return e.value, nil
	}

	v, err, _ := l.sfg.Do(key, func() (any, error) {
		if e, ok := l.entries.Load(key); ok {
			return e, nil
		}
		res, err := fn()
		if err != nil {
			return nil, err
		}
		fresh := entry[T]{value: res, fetchedAt: time.Now()}
		l.entries.Store(key, fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(entry[T]).value, nil
}

func (l *Loader[T]) Invalidate(key string) {
	l.entries.Delete(key)
}

func (l *Loader[T]) Len() int {
	return l.entries.Size()
}
