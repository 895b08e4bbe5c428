package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

type testRequest struct {
	TagID  int64  `json:"tag_id" validate:"gt=0"`
	Label  string `json:"label,omitempty" validate:"omitempty,min=2"`
	Secret string `json:"-" validate:"required"`
}

func fieldsOf(t *testing.T, err error) domainerrors.FieldErrors {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	return domainErr.Fields()
}

func TestValidator_ValidContact(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.Contact{Name: "Ada", Email: "ada@example.com"})
	assert.NoError(t, err)
}

func TestValidator_BlankNameAndInvalidEmail(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.Contact{Name: "   ", Email: "not-an-email"})

	fields := fieldsOf(t, err)
	assert.Equal(t, domainerrors.FieldErrors{
		"name":  {"can't be blank"},
		"email": {"is invalid"},
	}, fields)
}

func TestValidator_BlankEmail(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.Contact{Name: "Ada", Email: ""})

	assert.Equal(t, []string{"can't be blank"}, fieldsOf(t, err)["email"])
}

func TestValidator_BlankTag(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.Tag{Name: "\t"})

	assert.Equal(t, domainerrors.FieldErrors{"name": {"can't be blank"}}, fieldsOf(t, err))
}

func TestValidator_TooLong(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.Tag{Name: strings.Repeat("x", 256)})

	assert.Equal(t, []string{"is too long (maximum is 255 characters)"}, fieldsOf(t, err)["name"])
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{TagID: 0, Label: "x", Secret: "s"})

	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "tag_id")
	assert.Contains(t, fields, "label")
	assert.NotContains(t, fields, "TagID")
	assert.Equal(t, []string{"must be greater than 0"}, fields["tag_id"])
}
