package service

import (
	"context"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/normalize"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// NormalizeTagName turns a raw tag query into the folded key tags are indexed
// by. Surrounding whitespace and letter case do not matter. An empty or
// whitespace-only name is a bad request.
func NormalizeTagName(raw string) (string, error) {
	if normalize.IsBlank(raw) {
		return "", domainerrors.BadRequest(msgTagParamRequired)
	}
	return normalize.Key(raw), nil
}

// SearchByTag returns one page of the contacts associated with the tag
// matching rawTagName, in the order the associations were made. An unknown tag
// yields an empty page rather than an error.
func (s *ContactService) SearchByTag(ctx context.Context, rawTagName string, params store.PageParams) (store.Page[*domain.Contact], error) {
	key, err := NormalizeTagName(rawTagName)
	if err != nil {
		return store.Page[*domain.Contact]{}, err
	}

	page, err := s.store.ListContactsByTagKey(ctx, key, params)
	if err != nil {
		return store.Page[*domain.Contact]{}, unexpected(err)
	}

	s.logger.Debug("contacts searched by tag",
		"tag_key", key,
		"total_entries", page.TotalEntries,
	)

	return page, nil
}
