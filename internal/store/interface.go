// Package store defines the persistence interface for the Rolodex server.
package store

import (
	"context"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Implementations enforce the data invariants themselves: folded email and
// tag-name keys are unique, a (contact, tag) pair is stored at most once, and
// deleting a contact or tag removes its join records.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Contacts
	CreateContact(ctx context.Context, c *domain.Contact) error
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id int64) error
	ContactEmailTaken(ctx context.Context, emailKey string, exceptID int64) (bool, error)
	ListContacts(ctx context.Context, params PageParams) (Page[*domain.Contact], error)
	ListContactsByTagKey(ctx context.Context, nameKey string, params PageParams) (Page[*domain.Contact], error)
	ListContactsByTagName(ctx context.Context, name string, params PageParams) (Page[*domain.Contact], error)

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	GetTagByKey(ctx context.Context, nameKey string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id int64) error
	ListTags(ctx context.Context, params PageParams) (Page[*domain.Tag], error)

	// Associations
	AddTagToContact(ctx context.Context, contactID, tagID int64) (*domain.ContactTag, error)
	RemoveTagFromContact(ctx context.Context, contactID, tagID int64) error
	GetTagsForContacts(ctx context.Context, contactIDs []int64) (map[int64][]*domain.Tag, error)
	GetContactsForTags(ctx context.Context, tagIDs []int64) (map[int64][]*domain.Contact, error)
	CountContactsForTag(ctx context.Context, tagID int64) (int, error)
}
