package api

import (
	"context"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// Associations are embedded one level deep: a contact lists its tags as
// TagSummary values, which never carry contacts, and vice versa.

// ContactSummary is a contact's base fields.
type ContactSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagSummary is a tag's base fields.
type TagSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactResponse is a contact with its tags.
type ContactResponse struct {
	ContactSummary
	Tags []TagSummary `json:"tags"`
}

// TagResponse is a tag with its contacts.
type TagResponse struct {
	TagSummary
	Contacts []ContactSummary `json:"contacts"`
}

// ContactPage is the envelope for paginated contact lists and searches.
type ContactPage struct {
	Contacts     []ContactResponse `json:"contacts"`
	TotalPages   int               `json:"total_pages"`
	CurrentPage  int               `json:"current_page"`
	TotalEntries int               `json:"total_entries"`
}

// TagPage is the envelope for paginated tag lists.
type TagPage struct {
	Tags         []TagResponse `json:"tags"`
	TotalPages   int           `json:"total_pages"`
	CurrentPage  int           `json:"current_page"`
	TotalEntries int           `json:"total_entries"`
}

func newContactSummary(c *domain.Contact) ContactSummary {
	return ContactSummary{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newTagSummary(t *domain.Tag) TagSummary {
	return TagSummary{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func newContactResponse(c *domain.Contact, tags []*domain.Tag) ContactResponse {
	summaries := make([]TagSummary, len(tags))
	for i, t := range tags {
		summaries[i] = newTagSummary(t)
	}
	return ContactResponse{ContactSummary: newContactSummary(c), Tags: summaries}
}

func newTagResponse(t *domain.Tag, contacts []*domain.Contact) TagResponse {
	summaries := make([]ContactSummary, len(contacts))
	for i, c := range contacts {
		summaries[i] = newContactSummary(c)
	}
	return TagResponse{TagSummary: newTagSummary(t), Contacts: summaries}
}

// contactPage serializes a page of contacts, loading every contact's tags in
// one query.
func (s *Server) contactPage(ctx context.Context, page store.Page[*domain.Contact]) (ContactPage, error) {
	tags, err := s.services.Contact.TagsFor(ctx, page.Items)
	if err != nil {
		return ContactPage{}, err
	}

	out := store.MapPage(page, func(c *domain.Contact) ContactResponse {
		return newContactResponse(c, tags[c.ID])
	})
	return ContactPage{
		Contacts:     out.Items,
		TotalPages:   out.TotalPages,
		CurrentPage:  out.CurrentPage,
		TotalEntries: out.TotalEntries,
	}, nil
}

// tagPage serializes a page of tags, loading every tag's contacts in one query.
func (s *Server) tagPage(ctx context.Context, page store.Page[*domain.Tag]) (TagPage, error) {
	contacts, err := s.services.Tag.ContactsFor(ctx, page.Items)
	if err != nil {
		return TagPage{}, err
	}

	out := store.MapPage(page, func(t *domain.Tag) TagResponse {
		return newTagResponse(t, contacts[t.ID])
	})
	return TagPage{
		Tags:         out.Items,
		TotalPages:   out.TotalPages,
		CurrentPage:  out.CurrentPage,
		TotalEntries: out.TotalEntries,
	}, nil
}

func (s *Server) contactResponse(ctx context.Context, c *domain.Contact) (ContactResponse, error) {
	tags, err := s.services.Contact.TagsFor(ctx, []*domain.Contact{c})
	if err != nil {
		return ContactResponse{}, err
	}
	return newContactResponse(c, tags[c.ID]), nil
}

func (s *Server) tagResponse(ctx context.Context, t *domain.Tag) (TagResponse, error) {
	contacts, err := s.services.Tag.ContactsFor(ctx, []*domain.Tag{t})
	if err != nil {
		return TagResponse{}, err
	}
	return newTagResponse(t, contacts[t.ID]), nil
}
