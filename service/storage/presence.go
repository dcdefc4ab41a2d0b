package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Presence tracks which users hold a live push connection. Keys carry a TTL
// so a crashed gateway cannot leave users online forever.
type Presence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresence(ctx context.Context, c Config, ttl time.Duration) (*Presence, error) {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	return &Presence{rdb: rdb, ttl: ttl}, nil
}

func presenceKey(user string) string { return "chat:presence:" + user }

// Online marks the user online, storing the connection id and renewing the
// TTL.
func (p *Presence) Online(ctx context.Context, user, connID string) error {
	return p.rdb.Set(ctx, presenceKey(user), connID, p.ttl).Err()
}

// Offline deletes the key. Idempotent.
func (p *Presence) Offline(ctx context.Context, user string) error {
	return p.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup reports whether the user currently holds a live connection.
func (p *Presence) Lookup(ctx context.Context, user string) (connID string, online bool, err error) {
	val, err := p.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (p *Presence) Healthy(ctx context.Context) bool {
	return p.rdb.Ping(ctx).Err() == nil
}

func (p *Presence) Close() error {
	return p.rdb.Close()
}
