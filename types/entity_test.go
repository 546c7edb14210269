package types

import (
	"testing"
	"time"
)

func TestEntityTouch(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e := NewEntityAt(created)

	if e.UpdatedAt != nil {
		t.Fatalf("UpdatedAt: got %v, want nil", e.UpdatedAt)
	}
	if !e.LastModified().Equal(created) {
		t.Errorf("LastModified: got %v, want %v", e.LastModified(), created)
	}

	updated := created.Add(2 * time.Hour)
	e.TouchAt(updated)

	if e.UpdatedAt == nil || !e.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt: got %v, want %v", e.UpdatedAt, updated)
	}
	if !e.LastModified().Equal(updated) {
		t.Errorf("LastModified: got %v, want %v", e.LastModified(), updated)
	}
}
