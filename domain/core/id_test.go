package core

import (
	"errors"
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseVariantName(t *testing.T) {
	tests := []struct {
		input   string
		want    VariantName
		wantErr bool
	}{
		{"gb21", "gb21", false},
		{"  RF15 ", "rf15", false},
		{"price_v2-b", "price_v2-b", false},
		{"", "", true},
		{"   ", "", true},
		{"bad name", "", true},
		{"../etc", "", true},
	}

	for _, tt := range tests {
		got, err := ParseVariantName(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseVariantName(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVariantName(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVariantName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	labelErr := NewUnknownLabelError("brand", "Prada")
	if !errors.Is(labelErr, ErrUnknownLabel) || !IsInputError(labelErr) {
		t.Errorf("expected unknown label error to be an input error: %v", labelErr)
	}

	shapeErr := NewShapeMismatchError(0, 14, 15)
	if !IsModelError(shapeErr) {
		t.Errorf("expected shape mismatch to be a model error: %v", shapeErr)
	}
	if IsInputError(shapeErr) {
		t.Errorf("shape mismatch should not be an input error")
	}

	if !IsNotFoundError(ErrVariantNotFound) {
		t.Error("ErrVariantNotFound should wrap ErrNotFound")
	}
}

func TestTimestampUnixMilliRoundTrip(t *testing.T) {
	ts := Timestamp(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))
	back := FromUnixMilli(ts.UnixMilli())
	if !back.Time().Equal(ts.Time()) {
		t.Errorf("expected %s, got %s", ts, back)
	}
}
