package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505", func(t *testing.T) {
		err := &pq.Error{Code: "23505"}
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503"}
		if isUniqueViolation(err) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores non-pq errors", func(t *testing.T) {
		if isUniqueViolation(errors.New("duplicate key")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestNullTimeToTimePtr(t *testing.T) {
	ts := time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC)
	got := nullTimeToTimePtr(sql.NullTime{Time: ts, Valid: true})
	if got == nil || !got.Equal(ts) {
		t.Fatalf("unexpected pointer for valid time: %v", got)
	}
	if nullTimeToTimePtr(sql.NullTime{}) != nil {
		t.Fatalf("expected nil for invalid time")
	}
}

func TestNullStringToPtr(t *testing.T) {
	got := nullStringToPtr(sql.NullString{String: "home win recorded", Valid: true})
	if got == nil || *got != "home win recorded" {
		t.Fatalf("unexpected pointer for valid string: %v", got)
	}
	if nullStringToPtr(sql.NullString{}) != nil {
		t.Fatalf("expected nil for invalid string")
	}
}

func TestEncodeDecodeJSONMap(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		encoded := encodeJSONMap(map[string]any{"home_frames": 6, "away_frames": 4})
		decoded := decodeJSONMap(encoded)
		if decoded["home_frames"] != float64(6) {
			t.Fatalf("unexpected home_frames: %v", decoded["home_frames"])
		}
		if decoded["away_frames"] != float64(4) {
			t.Fatalf("unexpected away_frames: %v", decoded["away_frames"])
		}
	})

	t.Run("empty map encodes to empty object", func(t *testing.T) {
		if got := encodeJSONMap(nil); got != "{}" {
			t.Fatalf("unexpected encoding for nil map: %s", got)
		}
	})

	t.Run("malformed input decodes to empty map", func(t *testing.T) {
		if got := decodeJSONMap("{not json"); len(got) != 0 {
			t.Fatalf("expected empty map, got %v", got)
		}
	})
}
