package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func New(log *logger.Logger, cfg Config) (*Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "moodcheck:lock:"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Locker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: cfg.Prefix,
	}, nil
}

// TryAcquire takes the lock without waiting. ok is false when another holder
// owns it. The returned release func is safe to call after the TTL expired.
func (l *Locker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	token, err := randomToken()
	if err != nil {
		return nil, false, err
	}
	key := l.prefix + name
	ok, err = l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release = func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.log.Warn("Redis lock release failed", "lock", name, "error", err.Error())
		}
	}
	return release, true, nil
}

func (l *Locker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
