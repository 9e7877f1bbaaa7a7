// Package entry holds the cache entry model and its persisted wire envelope.
//
// The envelope is a JSON document with a fixed shape kept compatible with
// previously persisted data:
//
//	{data, timestamp, lastAccessTime, accessCount, sizeInBytes, ttl}
//
// Timestamps are ISO-8601 (RFC 3339); ttl is milliseconds and nullable. The
// data field carries the codec-encoded payload: embedded raw when the encoding
// is itself valid JSON (the default JSON codec), base64-wrapped otherwise.
package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed marks a persisted entry that cannot be decoded or fails
// envelope validation. Callers discard and clean such entries.
var ErrMalformed = errors.New("entry: malformed persisted entry")

// Entry is the in-memory representation of one cached value plus the access
// metadata eviction policies select on. The cache manager owns all mutation.
type Entry[V any] struct {
	Value          V
	Data           []byte // codec-encoded payload as persisted
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int64
	Size           int64         // payload size in bytes (encoded form)
	TTL            time.Duration // 0 means "use the cache default"
}

// New builds a fresh entry at now with a single recorded access.
func New[V any](value V, data []byte, size int64, ttl time.Duration, now time.Time) *Entry[V] {
	return &Entry[V]{
		Value:          value,
		Data:           data,
		CreatedAt:      now,
		LastAccessedAt: now,
		AccessCount:    1,
		Size:           size,
		TTL:            ttl,
	}
}

// Touch records a read hit.
func (e *Entry[V]) Touch(now time.Time) {
	e.AccessCount++
	e.LastAccessedAt = now
}

// ExpiredAt reports whether the entry is past its effective TTL at now.
// The per-entry TTL wins over defaultTTL when set. Expiry is measured from
// creation, not last access; a hit never extends the window.
func (e *Entry[V]) ExpiredAt(defaultTTL time.Duration, now time.Time) bool {
	ttl := e.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(ttl))
}

type envelope struct {
	Data           json.RawMessage `json:"data"`
	Timestamp      time.Time       `json:"timestamp"`
	LastAccessTime time.Time       `json:"lastAccessTime"`
	AccessCount    int64           `json:"accessCount"`
	SizeInBytes    int64           `json:"sizeInBytes"`
	TTLMillis      *int64          `json:"ttl"`
}

// Encode serializes the entry into its wire envelope.
func Encode[V any](e *Entry[V]) ([]byte, error) {
	env := envelope{
		Timestamp:      e.CreatedAt,
		LastAccessTime: e.LastAccessedAt,
		AccessCount:    e.AccessCount,
		SizeInBytes:    e.Size,
	}
	if e.TTL > 0 {
		ms := e.TTL.Milliseconds()
		env.TTLMillis = &ms
	}
	if len(e.Data) > 0 && json.Valid(e.Data) {
		env.Data = json.RawMessage(e.Data)
	} else {
		wrapped, err := json.Marshal(e.Data)
		if err != nil {
			return nil, fmt.Errorf("entry: encode payload: %w", err)
		}
		env.Data = wrapped
	}
	return json.Marshal(&env)
}

// Decode parses a wire envelope and decodes its payload with the given codec
// function. Any structural or validation failure is reported as ErrMalformed
// so callers can discard the entry uniformly.
func Decode[V any](b []byte, decode func([]byte) (V, error)) (*Entry[V], error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Timestamp.IsZero() || env.AccessCount < 1 || env.SizeInBytes < 0 {
		return nil, ErrMalformed
	}
	if env.LastAccessTime.Before(env.Timestamp) {
		return nil, ErrMalformed
	}

	data := []byte(env.Data)
	value, err := decode(data)
	if err != nil {
		// Binary codecs persist data base64-wrapped; unwrap and retry.
		var raw []byte
		if jerr := json.Unmarshal(env.Data, &raw); jerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		value, err = decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		data = raw
	}

	e := &Entry[V]{
		Value:          value,
		Data:           data,
		CreatedAt:      env.Timestamp,
		LastAccessedAt: env.LastAccessTime,
		AccessCount:    env.AccessCount,
		Size:           env.SizeInBytes,
	}
	if env.TTLMillis != nil {
		if *env.TTLMillis < 0 {
			return nil, ErrMalformed
		}
		e.TTL = time.Duration(*env.TTLMillis) * time.Millisecond
	}
	return e, nil
}
