package service

import (
	"errors"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// Messages surfaced for store-level conflicts.
const (
	msgTaken              = "has already been taken"
	msgContactNotFound    = "Contact not found"
	msgTagNotFound        = "Tag not found"
	msgTagParamRequired   = "Tag parameter is required"
	msgMissingAssociation = "Contact or tag no longer exists"
)

// notFound maps store.ErrNotFound to a domain not-found error and passes
// anything else through.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return unexpected(err)
}

// conflict maps a unique index rejection to a validation error on field.
func conflict(err error, field string) error {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.FieldInvalid(field, msgTaken).WithCause(err)
	case errors.Is(err, store.ErrConstraint):
		return domainerrors.Integrity(domainerrors.KindInvalidForeignKey, msgMissingAssociation).WithCause(err)
	default:
		return unexpected(err)
	}
}

// unexpected records where a failure the store could not classify surfaced.
// Store and domain errors pass through unchanged.
func unexpected(err error) error {
	var (
		storeErr  *store.Error
		domainErr *domainerrors.Error
	)
	if err == nil || errors.As(err, &storeErr) || errors.As(err, &domainErr) {
		return err
	}
	return domainerrors.WithStack(err)
}

// contactIDs returns the IDs of contacts in order.
func contactIDs(contacts []*domain.Contact) []int64 {
	ids := make([]int64, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	return ids
}

func tagIDs(tags []*domain.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
