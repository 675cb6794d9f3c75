package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// addSignupScript is a Lua script that claims the membership marker, appends
// the signup record, and increments the counter atomically, so two concurrent
// requests for the same email cannot both pass the duplicate check. Returns 0
// when the marker already exists, otherwise the new counter value.
var addSignupScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
    return 0
end
redis.call('RPUSH', KEYS[2], ARGV[2])
return redis.call('INCR', KEYS[3])
`)

// Redis is a Redis-backed implementation of Store suitable for replicated
// deployments. The signup insert runs as a Lua script so that duplicate
// detection, the list append, and the counter increment cannot interleave
// with other clients.
type Redis struct {
	client     *redis.Client
	prefix     string
	ratePrefix string
}

// RedisConfig holds configuration for the Redis connection.
// All fields should be populated explicitly by your application code from
// environment variables, config files, or other sources. Never reads
// environment variables directly.
type RedisConfig struct {
	// URL is the Redis server address (e.g., "localhost:6379")
	URL string

	// Password for Redis authentication (optional, leave empty if not needed)
	Password string

	// DB is the Redis database number (0-15, default: 0)
	DB int

	// Prefix is prepended to waitlist keys (default: "waitlist:")
	Prefix string

	// RatePrefix is prepended to per-IP rate-limit keys (default: "ratelimit:")
	RatePrefix string

	// PoolSize is the maximum number of connections (default: 10 * runtime.GOMAXPROCS)
	PoolSize int

	// MinIdleConns is the minimum number of idle connections (default: 0)
	MinIdleConns int

	// DialTimeout is the timeout for establishing new connections (default: 5s)
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads (default: 3s)
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes (default: ReadTimeout)
	WriteTimeout time.Duration
}

// NewRedis creates a Redis store with the given configuration.
// Validates the connection with a ping before returning. Returns an error if
// the connection cannot be established within 5 seconds.
//
// Example:
//
//	st, err := store.NewRedis(store.RedisConfig{
//		URL:    "localhost:6379",
//		DB:     0,
//		Prefix: "waitlist:",
//	})
func NewRedis(config RedisConfig) (*Redis, error) {
	if config.Prefix == "" {
		config.Prefix = "waitlist:"
	}
	if config.RatePrefix == "" {
		config.RatePrefix = "ratelimit:"
	}

	opts := &redis.Options{
		Addr:     config.URL,
		Password: config.Password,
		DB:       config.DB,
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.MinIdleConns > 0 {
		opts.MinIdleConns = config.MinIdleConns
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
	}
	if config.ReadTimeout > 0 {
		opts.ReadTimeout = config.ReadTimeout
	}
	if config.WriteTimeout > 0 {
		opts.WriteTimeout = config.WriteTimeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{
		client:     client,
		prefix:     config.Prefix,
		ratePrefix: config.RatePrefix,
	}, nil
}

func (r *Redis) markerKey(email string) string { return r.prefix + "email:" + email }
func (r *Redis) listKey() string               { return r.prefix + "list" }
func (r *Redis) countKey() string              { return r.prefix + "count" }
func (r *Redis) rateKey(ip string) string      { return r.ratePrefix + ip }

// AddSignup atomically claims the membership marker, appends the record, and
// increments the counter via addSignupScript.
func (r *Redis) AddSignup(ctx context.Context, rec Signup) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal signup: %w", err)
	}

	keys := []string{r.markerKey(rec.Email), r.listKey(), r.countKey()}
	position, err := addSignupScript.Run(ctx, r.client, keys, rec.Timestamp, string(data)).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis add signup failed: %w", err)
	}
	if position == 0 {
		return 0, ErrDuplicateEmail
	}
	return position, nil
}

// Exists reports whether a membership marker is present for the email.
func (r *Redis) Exists(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Exists(ctx, r.markerKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// Count returns the current signup counter value.
// Returns 0 if the counter key doesn't exist.
func (r *Redis) Count(ctx context.Context) (int64, error) {
	val, err := r.client.Get(ctx, r.countKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis count failed: %w", err)
	}
	return val, nil
}

// Signups returns every stored record in signup order.
func (r *Redis) Signups(ctx context.Context) ([]Signup, error) {
	raw, err := r.client.LRange(ctx, r.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis signups failed: %w", err)
	}

	out := make([]Signup, 0, len(raw))
	for _, item := range raw {
		var rec Signup
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal signup: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clear deletes every membership marker, the signup list, and resets the
// counter to zero. Markers are deleted one batch per pipeline round trip;
// a signup racing the clear can leave an orphaned marker behind.
func (r *Redis) Clear(ctx context.Context) error {
	signups, err := r.Signups(ctx)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	for _, rec := range signups {
		pipe.Del(ctx, r.markerKey(rec.Email))
	}
	pipe.Del(ctx, r.listKey())
	pipe.Set(ctx, r.countKey(), 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis clear failed: %w", err)
	}
	return nil
}

// RateStatus returns the accepted-signup count for ip within the given hour.
// A missing key or a bucket recorded for a different hour reads as 0.
func (r *Redis) RateStatus(ctx context.Context, ip string, hour int) (int64, error) {
	raw, err := r.client.Get(ctx, r.rateKey(ip)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis rate status failed: %w", err)
	}

	var bucket RateBucket
	if err := json.Unmarshal([]byte(raw), &bucket); err != nil {
		return 0, fmt.Errorf("unmarshal rate bucket: %w", err)
	}
	if bucket.Hour != hour {
		return 0, nil
	}
	return bucket.Count, nil
}

// RateBump records one accepted signup for ip with a one-hour expiry,
// resetting the bucket when the stored hour differs from the current one.
// The read-modify-write is not atomic; concurrent bumps for the same IP can
// undercount, which only ever lets a few extra signups through.
func (r *Redis) RateBump(ctx context.Context, ip string, hour int) error {
	count, err := r.RateStatus(ctx, ip, hour)
	if err != nil {
		return err
	}

	data, err := json.Marshal(RateBucket{Hour: hour, Count: count + 1})
	if err != nil {
		return fmt.Errorf("marshal rate bucket: %w", err)
	}

	if err := r.client.Set(ctx, r.rateKey(ip), data, time.Hour).Err(); err != nil {
		return fmt.Errorf("redis rate bump failed: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the Redis client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
