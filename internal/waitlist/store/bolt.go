package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Compile-time proof that the backends satisfy the Store interface.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*Bolt)(nil)
)

var (
	bucketMarkers = []byte("markers")
	bucketSignups = []byte("signups")
	bucketMeta    = []byte("meta")
	bucketRate    = []byte("ratelimit")
	keyCount      = []byte("count")
)

// boltRateRecord is the JSON shape stored in the ratelimit bucket. bbolt has
// no key expiry, so the deadline is stored alongside the bucket and checked
// on read.
type boltRateRecord struct {
	RateBucket
	Expires int64 `json:"expires"`
}

// Bolt is an ACID bbolt-backed implementation of Store for single-node
// deployments that need persistence without an external Redis.
// It is safe for concurrent use.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a bbolt database at path and initialises the
// required buckets.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	// Ensure buckets exist.
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketMarkers, bucketSignups, bucketMeta, bucketRate} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// AddSignup runs the marker claim, list append, and counter increment inside
// one bbolt write transaction.
func (s *Bolt) AddSignup(_ context.Context, rec Signup) (int64, error) {
	var position int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		markers := tx.Bucket(bucketMarkers)
		if markers.Get([]byte(rec.Email)) != nil {
			return ErrDuplicateEmail
		}
		if err := markers.Put([]byte(rec.Email), []byte(rec.Timestamp)); err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		signups := tx.Bucket(bucketSignups)
		seq, err := signups.NextSequence()
		if err != nil {
			return err
		}
		if err := signups.Put(itob(seq), data); err != nil {
			return err
		}

		meta := tx.Bucket(bucketMeta)
		position = btoi(meta.Get(keyCount)) + 1
		return meta.Put(keyCount, itob(uint64(position)))
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

// Exists reports whether a membership marker is present for the email.
func (s *Bolt) Exists(_ context.Context, email string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(bucketMarkers).Get([]byte(email)) != nil
		return nil
	})
	return ok, err
}

// Count returns the current signup counter value.
func (s *Bolt) Count(_ context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		n = btoi(tx.Bucket(bucketMeta).Get(keyCount))
		return nil
	})
	return n, err
}

// Signups returns every stored record in sequence (signup) order.
func (s *Bolt) Signups(_ context.Context) ([]Signup, error) {
	var out []Signup
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSignups).ForEach(func(_, v []byte) error {
			var rec Signup
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Clear drops and recreates the marker and signup buckets and resets the
// counter. Rate-limit buckets are left in place.
func (s *Bolt) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketMarkers, bucketSignups} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Put(keyCount, itob(0))
	})
}

// RateStatus returns the accepted-signup count for ip within the given hour.
func (s *Bolt) RateStatus(_ context.Context, ip string, hour int) (int64, error) {
	var count int64
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketRate).Get([]byte(ip))
		if raw == nil {
			return nil
		}
		var rec boltRateRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if time.Now().Unix() > rec.Expires || rec.Hour != hour {
			return nil
		}
		count = rec.Count
		return nil
	})
	return count, err
}

// RateBump records one accepted signup for ip, resetting the bucket on an
// hour mismatch or an expired deadline.
func (s *Bolt) RateBump(_ context.Context, ip string, hour int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rates := tx.Bucket(bucketRate)

		rec := boltRateRecord{RateBucket: RateBucket{Hour: hour}}
		if raw := rates.Get([]byte(ip)); raw != nil {
			var stored boltRateRecord
			if err := json.Unmarshal(raw, &stored); err == nil &&
				stored.Hour == hour && time.Now().Unix() <= stored.Expires {
				rec.Count = stored.Count
			}
		}
		rec.Count++
		rec.Expires = time.Now().Add(time.Hour).Unix()

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return rates.Put([]byte(ip), data)
	})
}

// Ping verifies the database file is still usable.
func (s *Bolt) Ping(_ context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketMeta) == nil {
			return fmt.Errorf("store: meta bucket missing")
		}
		return nil
	})
}

// Close closes the underlying database file.
func (s *Bolt) Close() error {
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}
