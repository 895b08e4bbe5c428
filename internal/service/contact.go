// Package service provides the business logic for managing contacts and tags.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/normalize"
	"github.com/rolodexapp/rolodex-server/internal/store"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

// ContactInput carries the writable contact fields. Nil fields are left
// unchanged on update.
type ContactInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ContactService orchestrates contact operations.
type ContactService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// List returns one page of contacts.
func (s *ContactService) List(ctx context.Context, params store.PageParams) (store.Page[*domain.Contact], error) {
	page, err := s.store.ListContacts(ctx, params)
	return page, unexpected(err)
}

// Get returns a contact by ID.
func (s *ContactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	c, err := s.store.GetContact(ctx, id)
	if err != nil {
		return nil, notFound(err, msgContactNotFound)
	}
	return c, nil
}

// Create validates and stores a new contact.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, unexpected(err)
	}

	now := time.Now().UTC()
	c := &domain.Contact{
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(c, in)

	if err := s.validator.Validate(c); err != nil {
		return nil, s.withEmailTaken(ctx, c, err)
	}

	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, conflict(err, "email")
	}

	s.logger.Info("contact created",
		"contact_id", c.ID,
	)

	return c, nil
}

// Update applies the supplied fields to an existing contact.
func (s *ContactService) Update(ctx context.Context, id int64, in ContactInput) (*domain.Contact, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(c, in)

	if err := s.validator.Validate(c); err != nil {
		return nil, s.withEmailTaken(ctx, c, err)
	}

	c.Touch()
	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, notFound(conflict(err, "email"), msgContactNotFound)
	}

	s.logger.Info("contact updated",
		"contact_id", c.ID,
	)

	return c, nil
}

// Delete removes a contact and its tag associations.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return notFound(err, msgContactNotFound)
	}

	s.logger.Info("contact deleted",
		"contact_id", id,
	)

	return nil
}

// AddTag associates an existing tag with an existing contact and returns the
// contact.
func (s *ContactService) AddTag(ctx context.Context, contactID, tagID int64) (*domain.Contact, error) {
	c, err := s.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return nil, notFound(err, msgTagNotFound)
	}

	if _, err := s.store.AddTagToContact(ctx, contactID, tagID); err != nil {
		return nil, conflict(err, "contact_id")
	}

	s.logger.Info("tag added to contact",
		"contact_id", contactID,
		"tag_id", tagID,
	)

	return c, nil
}

// RemoveTag removes a tag association from a contact.
func (s *ContactService) RemoveTag(ctx context.Context, contactID, tagID int64) error {
	if _, err := s.Get(ctx, contactID); err != nil {
		return err
	}
	if err := s.store.RemoveTagFromContact(ctx, contactID, tagID); err != nil {
		return notFound(err, msgTagNotFound)
	}
	return nil
}

// TagsFor loads the tags of every given contact in one query.
func (s *ContactService) TagsFor(ctx context.Context, contacts []*domain.Contact) (map[int64][]*domain.Tag, error) {
	tags, err := s.store.GetTagsForContacts(ctx, contactIDs(contacts))
	if err != nil {
		return nil, unexpected(fmt.Errorf("load contact tags: %w", err))
	}
	return tags, nil
}

// apply copies the supplied input fields onto c, trimming them and deriving
// the folded email key.
// withEmailTaken adds the uniqueness failure to a validation error that does
// not already reject the email, so every bad field is reported together.
func (s *ContactService) withEmailTaken(ctx context.Context, c *domain.Contact, err error) error {
	var verr *domainerrors.Error
	if !errors.As(err, &verr) {
		return err
	}
	fields := verr.Fields()
	if fields == nil || len(fields["email"]) > 0 || c.EmailKey == "" {
		return err
	}

	taken, lookupErr := s.store.ContactEmailTaken(ctx, c.EmailKey, c.ID)
	if lookupErr != nil {
		return unexpected(lookupErr)
	}
	if !taken {
		return err
	}

	merged := maps.Clone(fields)
	merged.Add("email", msgTaken)
	return domainerrors.ValidationWithDetails(verr.Message, merged)
}

func apply(c *domain.Contact, in ContactInput) {
	if in.Name != nil {
		c.Name = normalize.Text(*in.Name)
	}
	if in.Email != nil {
		c.Email = normalize.Text(*in.Email)
		c.EmailKey = normalize.Key(c.Email)
	}
}
