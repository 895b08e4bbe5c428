// Package domain contains the core entities of the Rolodex server.
package domain

import "time"

// Contact is a person in the address book.
// Email is unique case-insensitively; EmailKey holds the folded form the
// store indexes on.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"notblank,max=255"`
	Email     string    `json:"email" validate:"notblank,email,max=255"`
	EmailKey  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Contact) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// ContactTag represents one contact-tag association.
// A (ContactID, TagID) pair appears at most once.
type ContactTag struct {
	ID        int64     `json:"id"`
	ContactID int64     `json:"contact_id"`
	TagID     int64     `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
