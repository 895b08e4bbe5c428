package api

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createContact(t *testing.T, name, email string) ContactResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/contacts", fmt.Sprintf(`{"name":%q,"email":%q}`, name, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[ContactResponse](t, w)
}

func (ts *testServer) tagContact(t *testing.T, contactID, tagID int64) {
	t.Helper()
	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/contacts/%d/tags", contactID), fmt.Sprintf(`{"tag_id":%d}`, tagID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestListContacts_Empty(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(t, http.MethodGet, "/api/v1/contacts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contacts":[],"total_pages":0,"current_page":1,"total_entries":0}`, w.Body.String())
}

func TestListContacts_Pagination(t *testing.T) {
	ts := setupTestServer(t, Options{})
	for i := 1; i <= 23; i++ {
		ts.createContact(t, fmt.Sprintf("Contact %02d", i), fmt.Sprintf("c%02d@example.com", i))
	}

	tests := []struct {
		query     string
		wantItems int
		wantPage  int
		wantPages int
		wantFirst string
	}{
		{"", 10, 1, 3, "Contact 01"},
		{"?page=2", 10, 2, 3, "Contact 11"},
		{"?page=3", 3, 3, 3, "Contact 21"},
		{"?page=4", 0, 4, 3, ""},
		{"?page=-1&per_page=abc", 10, 1, 3, "Contact 01"},
		{"?per_page=5&page=5", 3, 5, 5, "Contact 21"},
		{"?per_page=100", 23, 1, 1, "Contact 01"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, "/api/v1/contacts"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			page := decode[ContactPage](t, w)
			assert.Len(t, page.Contacts, tt.wantItems)
			assert.Equal(t, tt.wantPage, page.CurrentPage)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, 23, page.TotalEntries)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, page.Contacts[0].Name)
			}
		})
	}
}

func TestListContacts_CoversEveryContactOnce(t *testing.T) {
	ts := setupTestServer(t, Options{})
	for i := 0; i < 17; i++ {
		ts.createContact(t, fmt.Sprintf("P%d", i), fmt.Sprintf("p%d@example.com", i))
	}

	seen := map[int64]bool{}
	first := decode[ContactPage](t, ts.do(t, http.MethodGet, "/api/v1/contacts?per_page=4", ""))
	for p := 1; p <= first.TotalPages; p++ {
		page := decode[ContactPage](t, ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/contacts?per_page=4&page=%d", p), ""))
		for _, c := range page.Contacts {
			assert.False(t, seen[c.ID], "contact %d returned twice", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Equal(t, 5, first.TotalPages)
	assert.Len(t, seen, 17)
}

func TestListContacts_MaxPerPage(t *testing.T) {
	ts := setupTestServer(t, Options{MaxPerPage: 5})
	for i := 0; i < 12; i++ {
		ts.createContact(t, fmt.Sprintf("M%d", i), fmt.Sprintf("m%d@example.com", i))
	}

	page := decode[ContactPage](t, ts.do(t, http.MethodGet, "/api/v1/contacts?per_page=100", ""))

	assert.Len(t, page.Contacts, 5)
	assert.Equal(t, 3, page.TotalPages)
}

func TestCreateContact(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(t, http.MethodPost, "/api/v1/contacts", `{"name":"  Ada Lovelace ","email":"Ada@Example.com"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	c := decode[ContactResponse](t, w)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "Ada@Example.com", c.Email)
	assert.NotNil(t, c.Tags)
	assert.Empty(t, c.Tags)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Contains(t, w.Body.String(), `"tags":[]`)
}

func TestCreateContact_WrappedBody(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(t, http.MethodPost, "/api/v1/contacts", `{"contact":{"name":"Grace","email":"grace@example.com"}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Grace", decode[ContactResponse](t, w).Name)
}

func TestCreateContact_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(t, http.MethodPost, "/api/v1/contacts", `{"name":"","email":"invalid-email"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode[map[string][]string](t, w)
	assert.Equal(t, []string{"can't be blank"}, errs["name"])
	assert.Equal(t, []string{"is invalid"}, errs["email"])
	assert.NotContains(t, errs, "error")
}

func TestCreateContact_DuplicateEmailIgnoresCase(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createContact(t, "Ada", "ada@example.com")

	w := ts.do(t, http.MethodPost, "/api/v1/contacts", `{"name":"Other Ada","email":" ADA@example.COM "}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"email":["has already been taken"]}`, w.Body.String())
}

func TestCreateContact_BlankNameAndTakenEmail(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createContact(t, "Ada", "ada@example.com")

	w := ts.do(t, http.MethodPost, "/api/v1/contacts", `{"name":"","email":"Ada@Example.com"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"name":["can't be blank"],"email":["has already been taken"]}`, w.Body.String())
}

func TestCreateContact_ConcurrentDuplicates(t *testing.T) {
	ts := setupTestServer(t, Options{})

	const n = 5
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = ts.do(t, http.MethodPost, "/api/v1/contacts", `{"name":"Racer","email":"race@example.com"}`).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusUnprocessableEntity, code)
		}
	}
	assert.Equal(t, 1, created)
}

func TestCreateContact_BadBodies(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{"missing", "", "ParameterMissing"},
		{"empty object", "{}", "ParameterMissing"},
		{"null root", `{"contact":null}`, "ParameterMissing"},
		{"not json", "name=Ada", "ParameterInvalid"},
		{"array", `[{"name":"Ada"}]`, "ParameterInvalid"},
		{"wrong type", `{"name":42,"email":"a@example.com"}`, "ParameterInvalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/contacts", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantKind, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestGetContact(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createContact(t, "Ada", "ada@example.com")

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/contacts/%d", created.ID), "")

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[ContactResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestGetContact_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, id := range []string{"999", "abc", "0", "-3"} {
		w := ts.do(t, http.MethodGet, "/api/v1/contacts/"+id, "")

		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.JSONEq(t, `{"error":"RecordNotFound","message":"Contact not found"}`, w.Body.String(), id)
	}
}

func TestUpdateContact_Partial(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createContact(t, "Ada", "ada@example.com")
	path := fmt.Sprintf("/api/v1/contacts/%d", created.ID)

	w := ts.do(t, http.MethodPut, path, `{"name":"Ada King"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[ContactResponse](t, w)
	assert.Equal(t, "Ada King", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))

	w = ts.do(t, http.MethodPatch, path, `{"contact":{"email":"countess@example.com"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[ContactResponse](t, w)
	assert.Equal(t, "Ada King", got.Name)
	assert.Equal(t, "countess@example.com", got.Email)
}

func TestUpdateContact_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createContact(t, "Ada", "ada@example.com")
	grace := ts.createContact(t, "Grace", "grace@example.com")
	path := fmt.Sprintf("/api/v1/contacts/%d", grace.ID)

	w := ts.do(t, http.MethodPut, path, `{"email":"ADA@example.com"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"email":["has already been taken"]}`, w.Body.String())

	w = ts.do(t, http.MethodPut, path, `{"name":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"name":["can't be blank"]}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/api/v1/contacts/999", `{"name":"Nobody"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, path, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteContact(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createContact(t, "Ada", "ada@example.com")
	tag := ts.createTag(t, "VIP")
	ts.tagContact(t, created.ID, tag.ID)
	path := fmt.Sprintf("/api/v1/contacts/%d", created.ID)

	w := ts.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, "").Code)

	got := decode[TagResponse](t, ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tags/%d", tag.ID), ""))
	assert.Empty(t, got.Contacts)
}

func TestSearchContacts(t *testing.T) {
	ts := setupTestServer(t, Options{})
	vip := ts.createTag(t, "VIP")
	other := ts.createTag(t, "Other")

	var ids []int64
	for i := 0; i < 3; i++ {
		c := ts.createContact(t, fmt.Sprintf("V%d", i), fmt.Sprintf("v%d@example.com", i))
		ids = append(ids, c.ID)
	}
	// Associate in reverse creation order so association order is observable.
	for i := len(ids) - 1; i >= 0; i-- {
		ts.tagContact(t, ids[i], vip.ID)
	}
	ts.tagContact(t, ids[0], other.ID)

	var pages []ContactPage
	for _, q := range []string{"%20VIP%20", "vip", "VIP"} {
		w := ts.do(t, http.MethodGet, "/api/v1/contacts/search?tag_name="+q, "")
		require.Equal(t, http.StatusOK, w.Code, q)
		pages = append(pages, decode[ContactPage](t, w))
	}

	assert.Equal(t, pages[0], pages[1])
	assert.Equal(t, pages[1], pages[2])
	require.Len(t, pages[0].Contacts, 3)
	assert.Equal(t, 3, pages[0].TotalEntries)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{
		pages[0].Contacts[0].ID, pages[0].Contacts[1].ID, pages[0].Contacts[2].ID,
	})
	assert.Len(t, pages[0].Contacts[2].Tags, 2, "embedded tags are the contact's full tag list")

	w := ts.do(t, http.MethodGet, "/api/v1/contacts/search?tag_name=vip&per_page=2&page=2", "")
	page := decode[ContactPage](t, w)
	assert.Len(t, page.Contacts, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestSearchContacts_UnknownTag(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(t, http.MethodGet, "/api/v1/contacts/search?tag_name=nonexistent", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contacts":[],"total_pages":0,"current_page":1,"total_entries":0}`, w.Body.String())
}

func TestSearchContacts_BlankTagName(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, q := range []string{"", "?tag_name=", "?tag_name=%20%20"} {
		w := ts.do(t, http.MethodGet, "/api/v1/contacts/search"+q, "")

		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.JSONEq(t, `{"error":"ParameterMissing","message":"Tag parameter is required"}`, w.Body.String(), q)
	}
}

func TestContactTags_AddAndRemove(t *testing.T) {
	ts := setupTestServer(t, Options{})
	c := ts.createContact(t, "Ada", "ada@example.com")
	tag := ts.createTag(t, "Friends")
	tagsPath := fmt.Sprintf("/api/v1/contacts/%d/tags", c.ID)

	w := ts.do(t, http.MethodPost, tagsPath, fmt.Sprintf(`{"tag_id":%d}`, tag.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[ContactResponse](t, w)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Friends", got.Tags[0].Name)
	assert.NotContains(t, w.Body.String(), `"contacts"`, "embedded tags do not embed contacts")

	w = ts.do(t, http.MethodPost, tagsPath, fmt.Sprintf(`{"tag_id":%d}`, tag.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"contact_id":["has already been taken"]}`, w.Body.String())

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", tagsPath, tag.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", tagsPath, tag.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"RecordNotFound","message":"Tag not found"}`, w.Body.String())
}

func TestContactTags_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	c := ts.createContact(t, "Ada", "ada@example.com")
	tag := ts.createTag(t, "Friends")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/contacts/%d/tags", c.ID), `{"tag_id":999}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"RecordNotFound","message":"Tag not found"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/contacts/999/tags", fmt.Sprintf(`{"tag_id":%d}`, tag.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"RecordNotFound","message":"Contact not found"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/contacts/%d/tags", c.ID), `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"ParameterMissing","message":"param is missing or the value is empty: tag_id"}`, w.Body.String())
}
