package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/model"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name       string
		req        model.LoginRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  model.LoginRequest{Email: "a@x.com", Password: "secret1"},
		},
		{
			name: "password exactly six",
			req:  model.LoginRequest{Email: "a@x.com", Password: "123456"},
		},
		{
			name:       "bad email",
			req:        model.LoginRequest{Email: "not-an-email", Password: "secret1"},
			wantFields: []string{"email"},
		},
		{
			name:       "empty email",
			req:        model.LoginRequest{Email: "", Password: "secret1"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			req:        model.LoginRequest{Email: "a@x.com", Password: "12345"},
			wantFields: []string{"password"},
		},
		{
			name:       "both invalid",
			req:        model.LoginRequest{},
			wantFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			ae, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, MessageInvalidInput, ae.Message)
			for _, f := range tt.wantFields {
				assert.Contains(t, ae.Fields, f)
			}
			assert.Len(t, ae.Fields, len(tt.wantFields))
		})
	}
}

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name      string
		in        model.ContactInput
		wantField string
		wantMsg   string
	}{
		{
			name: "valid",
			in:   model.ContactInput{Name: "Bob", Email: "bob@x.com", Phone: "5551234567"},
		},
		{
			name:      "empty name",
			in:        model.ContactInput{Name: "", Email: "bob@x.com", Phone: "5551234567"},
			wantField: "name",
			wantMsg:   "name is required",
		},
		{
			name:      "bad email",
			in:        model.ContactInput{Name: "Bob", Email: "bob", Phone: "5551234567"},
			wantField: "email",
			wantMsg:   "email must be a valid email address",
		},
		{
			name:      "short phone",
			in:        model.ContactInput{Name: "Bob", Email: "bob@x.com", Phone: "555123456"},
			wantField: "phone",
			wantMsg:   "phone must be at least 10 characters",
		},
		{
			name: "phone format unconstrained",
			in:   model.ContactInput{Name: "Bob", Email: "bob@x.com", Phone: "+1 (555) 12-34"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			ae, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, ae.Fields[tt.wantField])
		})
	}
}

func TestValidateRegisterNameOptional(t *testing.T) {
	require.NoError(t, Validate(model.RegisterRequest{Email: "a@x.com", Password: "secret1"}))
	require.NoError(t, Validate(model.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"}))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestValidateLengthBounds(t *testing.T) {
	longEmail := strings.Repeat("a", 300) + "@x.com"

	tests := []struct {
		name    string
		v       any
		field   string
		wantMsg string
	}{
		{"login email", model.LoginRequest{Email: longEmail, Password: "secret1"}, "email", "email must be at most 254 characters"},
		{"register email", model.RegisterRequest{Email: longEmail, Password: "secret1"}, "email", "email must be at most 254 characters"},
		{"register name", model.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: strings.Repeat("n", 256)}, "name", "name must be at most 255 characters"},
		{"contact name", model.ContactInput{Name: strings.Repeat("n", 70000), Email: "bob@x.com", Phone: "5551234567"}, "name", "name must be at most 255 characters"},
		{"contact email", model.ContactInput{Name: "Bob", Email: longEmail, Phone: "5551234567"}, "email", "email must be at most 254 characters"},
		{"contact phone", model.ContactInput{Name: "Bob", Email: "bob@x.com", Phone: strings.Repeat("5", 33)}, "phone", "phone must be at most 32 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae, ok := apperr.As(Validate(tt.v))
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, tt.wantMsg, ae.Fields[tt.field])
		})
	}
}

func TestValidateLengthBoundsInclusive(t *testing.T) {
	require.NoError(t, Validate(model.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: strings.Repeat("n", 255)}))
	require.NoError(t, Validate(model.ContactInput{Name: strings.Repeat("é", 255), Email: "bob@x.com", Phone: strings.Repeat("5", 32)}))
}
