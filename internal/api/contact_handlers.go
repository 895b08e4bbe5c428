package api

import (
	"net/http"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/http/response"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

const (
	msgContactNotFound = "Contact not found"
	msgTagNotFound     = "Tag not found"
)

// addTagRequest is the body of POST /contacts/{id}/tags.
type addTagRequest struct {
	TagID *int64 `json:"tag_id"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	page, err := s.services.Contact.List(ctx, s.pageParams(r))
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

// handleSearchContacts lists the contacts tagged tag_name, ignoring case and
// surrounding whitespace.
func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	page, err := s.services.Contact.SearchByTag(ctx, r.URL.Query().Get("tag_name"), s.pageParams(r))
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

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r, "id", msgContactNotFound)
	if err != nil {
		return err
	}

	contact, err := s.services.Contact.Get(ctx, id)
	if err != nil {
		return err
	}

	body, err := s.contactResponse(ctx, contact)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var in service.ContactInput
	if err := decodeBody(r, "contact", &in); err != nil {
		return err
	}

	contact, err := s.services.Contact.Create(ctx, in)
	if err != nil {
		return err
	}

	body, err := s.contactResponse(ctx, contact)
	if err != nil {
		return err
	}
	response.Created(w, body, s.logger)
	return nil
}

// handleUpdateContact serves both PUT and PATCH. Only supplied fields change.
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r, "id", msgContactNotFound)
	if err != nil {
		return err
	}

	var in service.ContactInput
	if err := decodeBody(r, "contact", &in); err != nil {
		return err
	}

	contact, err := s.services.Contact.Update(ctx, id, in)
	if err != nil {
		return err
	}

	body, err := s.contactResponse(ctx, contact)
	if err != nil {
		return err
	}
	response.OK(w, body, s.logger)
	return nil
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r, "id", msgContactNotFound)
	if err != nil {
		return err
	}

	if err := s.services.Contact.Delete(r.Context(), id); err != nil {
		return err
	}

	response.NoContent(w)
	return nil
}

func (s *Server) handleAddContactTag(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r, "id", msgContactNotFound)
	if err != nil {
		return err
	}

	var req addTagRequest
	if err := decodeBody(r, "contact_tag", &req); err != nil {
		return err
	}
	if req.TagID == nil {
		return domainerrors.BadRequest("param is missing or the value is empty: tag_id")
	}

	contact, err := s.services.Contact.AddTag(ctx, id, *req.TagID)
	if err != nil {
		return err
	}

	body, err := s.contactResponse(ctx, contact)
	if err != nil {
		return err
	}
	response.Created(w, body, s.logger)
	return nil
}

func (s *Server) handleRemoveContactTag(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r, "id", msgContactNotFound)
	if err != nil {
		return err
	}
	tagID, err := parseID(r, "tagID", msgTagNotFound)
	if err != nil {
		return err
	}

	if err := s.services.Contact.RemoveTag(r.Context(), id, tagID); err != nil {
		return err
	}

	response.NoContent(w)
	return nil
}
