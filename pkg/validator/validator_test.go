package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

func TestValidate_CreateLinkRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       domain.CreateLinkRequest
		wantField string
	}{
		{"valid", domain.CreateLinkRequest{TargetURL: "https://example.com"}, ""},
		{"valid custom", domain.CreateLinkRequest{TargetURL: "https://example.com", CustomKey: "my-link_1"}, ""},
		{"missing url", domain.CreateLinkRequest{}, "TargetURL"},
		{"bad url", domain.CreateLinkRequest{TargetURL: "not a url"}, "TargetURL"},
		{"short key", domain.CreateLinkRequest{TargetURL: "https://example.com", CustomKey: "ab"}, "CustomKey"},
		{"bad chars", domain.CreateLinkRequest{TargetURL: "https://example.com", CustomKey: "my link!"}, "CustomKey"},
		{"reserved", domain.CreateLinkRequest{TargetURL: "https://example.com", CustomKey: "Admin"}, "CustomKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.req)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidate_Password(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd!", true},
		{"Sh0rt!", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password12", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			errs := Validate(domain.RegisterRequest{Email: "a@example.com", Password: tt.password})
			assert.Equal(t, tt.valid, len(errs) == 0, errs)
		})
	}
}

func TestIsReservedKeyword(t *testing.T) {
	assert.True(t, IsReservedKeyword("API"))
	assert.True(t, IsReservedKeyword("healthz"))
	assert.False(t, IsReservedKeyword("promo"))
}
