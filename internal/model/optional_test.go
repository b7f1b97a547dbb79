package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOptionalTimeUnmarshal(t *testing.T) {
	type payload struct {
		PlayedAt OptionalTime `json:"playedAt"`
	}

	t.Run("absent field", func(t *testing.T) {
		var p payload
		if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if p.PlayedAt.Set {
			t.Fatal("absent field must not be marked set")
		}
	})

	t.Run("explicit null", func(t *testing.T) {
		var p payload
		if err := json.Unmarshal([]byte(`{"playedAt":null}`), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !p.PlayedAt.Set || p.PlayedAt.Value != nil {
			t.Fatalf("expected set-to-null, got %+v", p.PlayedAt)
		}
	})

	t.Run("timestamp", func(t *testing.T) {
		var p payload
		if err := json.Unmarshal([]byte(`{"playedAt":"2026-03-14T15:00:00Z"}`), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		want := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
		if !p.PlayedAt.Set || p.PlayedAt.Value == nil || !p.PlayedAt.Value.Equal(want) {
			t.Fatalf("expected %v, got %+v", want, p.PlayedAt)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var p payload
		if err := json.Unmarshal([]byte(`{"playedAt":"yesterday"}`), &p); err == nil {
			t.Fatal("expected error")
		}
	})
}
