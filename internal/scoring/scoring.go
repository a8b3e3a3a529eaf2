// Package scoring computes online scores and reads client interests from the store.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"scoreapi/pkg/platform/sentinel"
)

// Score weights, one per field pair. A pair counts only when both of its
// fields were supplied; pairs add up independently.
const (
	WeightContact  = 3.0 // phone and email
	WeightBirthday = 1.5 // birthday and gender
	WeightName     = 0.5 // first and last name
)

const birthdayKeyLayout = "20060102"

// ScoreStore is the cache surface used for scores.
type ScoreStore interface {
	CacheGet(ctx context.Context, key string) (string, bool)
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)
}

// InterestStore reads interests from the authoritative store.
type InterestStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// InterestWriter writes interests to the authoritative store.
type InterestWriter interface {
	Set(ctx context.Context, key, value string) error
}

// Profile is the scoring input. Values feed the cache key; Present decides
// the score.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Gender    int64
	// Present names the supplied fields, empty values included.
	Present []string
}

func (p Profile) has(names ...string) bool {
	for _, name := range names {
		if !slices.Contains(p.Present, name) {
			return false
		}
	}
	return true
}

// Key is the cache address of a profile's score.
func Key(p Profile) string {
	var birthday string
	if !p.Birthday.IsZero() {
		birthday = p.Birthday.Format(birthdayKeyLayout)
	}
	sum := md5.Sum([]byte(p.FirstName + p.LastName + p.Phone + birthday))
	return "uid:" + hex.EncodeToString(sum[:])
}

// Compute sums the weights of the field pairs present in p.
func Compute(p Profile) float64 {
	var score float64
	if p.has("phone", "email") {
		score += WeightContact
	}
	if p.has("birthday", "gender") {
		score += WeightBirthday
	}
	if p.has("first_name", "last_name") {
		score += WeightName
	}
	return score
}

// Score returns the cached score for p when one is available and non-zero,
// otherwise computes it and caches it for ttl.
func Score(ctx context.Context, store ScoreStore, p Profile, ttl time.Duration) float64 {
	key := Key(p)
	if cached, ok := store.CacheGet(ctx, key); ok {
		if v, err := strconv.ParseFloat(cached, 64); err == nil && v != 0 {
			return v
		}
	}
	score := Compute(p)
	store.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), ttl)
	return score
}

// InterestsKey is the store key holding a client's interests.
func InterestsKey(id int64) string {
	return "i:" + strconv.FormatInt(id, 10)
}

// Interests returns the interests stored for client id. A missing key yields
// an empty list; any other failure is returned.
func Interests(ctx context.Context, store InterestStore, id int64) ([]string, error) {
	raw, err := store.Get(ctx, InterestsKey(id))
	if errors.Is(err, sentinel.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	interests := []string{}
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("decode interests for client %d: %w", id, err)
	}
	if interests == nil {
		interests = []string{}
	}
	return interests, nil
}

// SetInterests stores the interests of client id.
func SetInterests(ctx context.Context, store InterestWriter, id int64, interests []string) error {
	if interests == nil {
		interests = []string{}
	}
	raw, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("encode interests for client %d: %w", id, err)
	}
	return store.Set(ctx, InterestsKey(id), string(raw))
}
