package types

import "time"

// Entity carries the creation and last-update timestamps shared by Folio
// aggregates. UpdatedAt stays nil until the first update.
type Entity struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewEntity creates an Entity stamped with the current time.
func NewEntity() Entity {
	return NewEntityAt(time.Now())
}

// NewEntityAt creates an Entity stamped with t.
func NewEntityAt(t time.Time) Entity {
	return Entity{CreatedAt: t.UTC()}
}

// Touch sets UpdatedAt to now.
func (e *Entity) Touch() {
	e.TouchAt(time.Now())
}

// TouchAt sets UpdatedAt to t.
func (e *Entity) TouchAt(t time.Time) {
	u := t.UTC()
	e.UpdatedAt = &u
}

// LastModified returns UpdatedAt when set, CreatedAt otherwise.
func (e Entity) LastModified() time.Time {
	if e.UpdatedAt != nil {
		return *e.UpdatedAt
	}
	return e.CreatedAt
}
