package api

import (
	"net/http"

	"github.com/rolodexapp/rolodex-server/internal/http/response"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	page, err := s.services.Tag.List(ctx, s.pageParams(r))
	if err != nil {
		return err
	}

	body, err := s.tagPage(ctx, page)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

// handleSearchTags lists the contacts of the tag named exactly tag.
func (s *Server) handleSearchTags(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	page, err := s.services.Tag.ContactsForTag(ctx, r.URL.Query().Get("tag"), s.pageParams(r))
	if err != nil {
		return err
	}

	body, err := s.contactPage(ctx, page)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r, "id", msgTagNotFound)
	if err != nil {
		return err
	}

	tag, err := s.services.Tag.Get(ctx, id)
	if err != nil {
		return err
	}

	body, err := s.tagResponse(ctx, tag)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var in service.TagInput
	if err := decodeBody(r, "tag", &in); err != nil {
		return err
	}

	tag, err := s.services.Tag.Create(ctx, in)
	if err != nil {
		return err
	}

	body, err := s.tagResponse(ctx, tag)
	if err != nil {
		return err
	}
	response.Created(w, body, s.logger)
	return nil
}

// handleUpdateTag serves both PUT and PATCH.
func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r, "id", msgTagNotFound)
	if err != nil {
		return err
	}

	var in service.TagInput
	if err := decodeBody(r, "tag", &in); err != nil {
		return err
	}

	tag, err := s.services.Tag.Update(ctx, id, in)
	if err != nil {
		return err
	}

	body, err := s.tagResponse(ctx, tag)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r, "id", msgTagNotFound)
	if err != nil {
		return err
	}

	if err := s.services.Tag.Delete(r.Context(), id); err != nil {
		return err
	}

	response.NoContent(w)
	return nil
}
