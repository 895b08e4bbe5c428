package domain

import "time"

// Tag is a label that can be attached to any number of contacts.
// Name is unique case-insensitively; NameKey holds the folded form.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"notblank,max=255"`
	NameKey   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
