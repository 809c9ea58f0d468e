package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"plain", "guest@visitor.com", "guest@visitor.com", nil},
		{"mixed case and spaces", "  Admin@Campus.EDU ", "admin@campus.edu", nil},
		{"empty", "   ", "", ErrEmptyEmail},
		{"missing at", "guest.visitor.com", "", ErrInvalidEmail},
		{"missing domain", "guest@", "", ErrInvalidEmail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Email(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestPassword(t *testing.T) {
	v := New()

	assert.ErrorIs(t, v.Password("12345"), ErrPasswordTooShort)
	assert.NoError(t, v.Password("123456"))
}

func TestOrganizationFromEmail(t *testing.T) {
	v := New()

	assert.Equal(t, "Stanford", v.OrganizationFromEmail("jane@stanford.edu"))
	assert.Equal(t, "Campus", v.OrganizationFromEmail("admin@campus.edu"))
	assert.Equal(t, "", v.OrganizationFromEmail("no-domain@"))
	assert.Equal(t, "", v.OrganizationFromEmail("nobody"))
}

func TestStruct(t *testing.T) {
	v := New()

	type payload struct {
		Name    string  `json:"name" validate:"required"`
		Rating  int     `json:"rating" validate:"min=1,max=5"`
		Type    string  `json:"type" validate:"oneof=Single Double Suite Studio"`
		Price   float64 `json:"price" validate:"gt=0"`
		Ignored string  `json:"-"`
	}

	assert.Nil(t, v.Struct(payload{Name: "x", Rating: 5, Type: "Suite", Price: 10}))

	fields := v.Struct(payload{Rating: 6, Type: "Villa"})
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "max", fields["rating"])
	assert.Equal(t, "oneof", fields["type"])
	assert.Equal(t, "gt", fields["price"])
}
