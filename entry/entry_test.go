package entry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonDecode(b []byte) (string, error) {
	var s string
	err := json.Unmarshal(b, &s)
	return s, err
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	data, _ := json.Marshal("hello")
	e := New("hello", data, int64(len(data)), 30*time.Second, now)

	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(b, jsonDecode)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Value != "hello" {
		t.Fatalf("value mismatch: %q", got.Value)
	}
	if !got.CreatedAt.Equal(now) || !got.LastAccessedAt.Equal(now) {
		t.Fatalf("timestamp mismatch: %v / %v", got.CreatedAt, got.LastAccessedAt)
	}
	if got.AccessCount != 1 || got.Size != int64(len(data)) {
		t.Fatalf("metadata mismatch: count=%d size=%d", got.AccessCount, got.Size)
	}
	if got.TTL != 30*time.Second {
		t.Fatalf("ttl mismatch: %v", got.TTL)
	}
}

func TestEnvelopeShape(t *testing.T) {
	now := time.Now().UTC()
	data, _ := json.Marshal(map[string]string{"token": "abc"})
	e := New(map[string]string{"token": "abc"}, data, int64(len(data)), 0, now)

	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	for _, field := range []string{"data", "timestamp", "lastAccessTime", "accessCount", "sizeInBytes", "ttl"} {
		if _, ok := env[field]; !ok {
			t.Fatalf("envelope missing field %q in %s", field, b)
		}
	}
	if string(env["ttl"]) != "null" {
		t.Fatalf("unset ttl must serialize as null, got %s", env["ttl"])
	}
	// JSON payloads embed raw, not base64
	if string(env["data"]) != string(data) {
		t.Fatalf("data not embedded raw: %s", env["data"])
	}
	// timestamps must be ISO-8601 strings
	if !strings.HasPrefix(string(env["timestamp"]), `"`) {
		t.Fatalf("timestamp not a string: %s", env["timestamp"])
	}
}

func TestBinaryPayloadRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x10, 0x80} // not valid JSON
	e := New(raw, raw, int64(len(raw)), 0, time.Now())

	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b, func(b []byte) ([]byte, error) {
		if !json.Valid(b) {
			return b, nil
		}
		return nil, errors.New("expected raw bytes")
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got.Value) != string(raw) {
		t.Fatalf("binary payload mismatch: %x", got.Value)
	}
}

func TestDecodeMalformed(t *testing.T) {
	now := time.Now()
	valid := func(mutate func(*envelope)) []byte {
		data, _ := json.Marshal("x")
		env := envelope{
			Data:           data,
			Timestamp:      now,
			LastAccessTime: now,
			AccessCount:    1,
			SizeInBytes:    3,
		}
		mutate(&env)
		b, _ := json.Marshal(&env)
		return b
	}

	cases := map[string][]byte{
		"not json":          []byte("{nope"),
		"zero timestamp":    valid(func(e *envelope) { e.Timestamp = time.Time{} }),
		"zero access count": valid(func(e *envelope) { e.AccessCount = 0 }),
		"negative size":     valid(func(e *envelope) { e.SizeInBytes = -1 }),
		"access before create": valid(func(e *envelope) {
			e.LastAccessTime = now.Add(-time.Hour)
		}),
		"bad payload": valid(func(e *envelope) { e.Data = json.RawMessage(`42`) }),
	}
	for name, b := range cases {
		if _, err := Decode(b, jsonDecode); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestExpiry(t *testing.T) {
	base := time.Now()
	data, _ := json.Marshal("v")

	withTTL := New("v", data, 3, 50*time.Millisecond, base)
	noTTL := New("v", data, 3, 0, base)

	defaultTTL := 100 * time.Millisecond

	if withTTL.ExpiredAt(defaultTTL, base.Add(40*time.Millisecond)) {
		t.Error("entry should not be expired before its own ttl")
	}
	if !withTTL.ExpiredAt(defaultTTL, base.Add(60*time.Millisecond)) {
		t.Error("per-entry ttl must override the longer default")
	}
	if noTTL.ExpiredAt(defaultTTL, base.Add(60*time.Millisecond)) {
		t.Error("default ttl should not have elapsed yet")
	}
	if !noTTL.ExpiredAt(defaultTTL, base.Add(120*time.Millisecond)) {
		t.Error("default ttl should have elapsed")
	}
	// boundary is strict: exactly createdAt+ttl is still valid
	if withTTL.ExpiredAt(defaultTTL, base.Add(50*time.Millisecond)) {
		t.Error("expiry must be strictly after createdAt+ttl")
	}
}

func TestExpiryNotSliding(t *testing.T) {
	base := time.Now()
	data, _ := json.Marshal("v")
	e := New("v", data, 3, 50*time.Millisecond, base)

	e.Touch(base.Add(40 * time.Millisecond))
	if !e.ExpiredAt(0, base.Add(60*time.Millisecond)) {
		t.Error("a hit must not refresh the expiry window")
	}
	if e.AccessCount != 2 {
		t.Errorf("Touch should increment access count, got %d", e.AccessCount)
	}
}
