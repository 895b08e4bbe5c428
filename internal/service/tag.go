package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/normalize"
	"github.com/rolodexapp/rolodex-server/internal/store"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

// TagInput carries the writable tag fields. A nil Name is left unchanged on
// update.
type TagInput struct {
	Name *string `json:"name"`
}

// TagService orchestrates tag operations.
type TagService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// List returns one page of tags.
func (s *TagService) List(ctx context.Context, params store.PageParams) (store.Page[*domain.Tag], error) {
	page, err := s.store.ListTags(ctx, params)
	return page, unexpected(err)
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, notFound(err, msgTagNotFound)
	}
	return t, nil
}

// Create validates and stores a new tag.
func (s *TagService) Create(ctx context.Context, in TagInput) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, unexpected(err)
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyTag(t, in)

	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}

	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, conflict(err, "name")
	}

	s.logger.Info("tag created",
		"tag_id", t.ID,
		"name", t.Name,
	)

	return t, nil
}

// Update renames an existing tag.
func (s *TagService) Update(ctx context.Context, id int64, in TagInput) (*domain.Tag, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyTag(t, in)

	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}

	t.Touch()
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, notFound(conflict(err, "name"), msgTagNotFound)
	}

	s.logger.Info("tag updated",
		"tag_id", t.ID,
		"name", t.Name,
	)

	return t, nil
}

// Delete removes a tag and its contact associations.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return notFound(err, msgTagNotFound)
	}

	s.logger.Info("tag deleted",
		"tag_id", id,
	)

	return nil
}

// ContactsForTag returns the contacts of the tag whose name equals name
// exactly. A blank name is a bad request; an unknown name yields an empty page.
func (s *TagService) ContactsForTag(ctx context.Context, name string, params store.PageParams) (store.Page[*domain.Contact], error) {
	if normalize.IsBlank(name) {
		return store.Page[*domain.Contact]{}, domainerrors.BadRequest(msgTagParamRequired)
	}
	page, err := s.store.ListContactsByTagName(ctx, name, params)
	return page, unexpected(err)
}

// ContactsFor loads the contacts of every given tag in one query.
func (s *TagService) ContactsFor(ctx context.Context, tags []*domain.Tag) (map[int64][]*domain.Contact, error) {
	contacts, err := s.store.GetContactsForTags(ctx, tagIDs(tags))
	if err != nil {
		return nil, unexpected(fmt.Errorf("load tag contacts: %w", err))
	}
	return contacts, nil
}

func applyTag(t *domain.Tag, in TagInput) {
	if in.Name != nil {
		t.Name = normalize.Text(*in.Name)
		t.NameKey = normalize.Key(t.Name)
	}
}
