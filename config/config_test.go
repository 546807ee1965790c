package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminEmailList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Boss@Firm.com", []string{"boss@firm.com"}},
		{"spaces and blanks", " a@x.io , ,B@y.io ", []string{"a@x.io", "b@y.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AppConfig.AdminEmails = tt.raw
			assert.Equal(t, tt.want, AdminEmailList())
		})
	}
}

func TestValidateRequiresJWTSecretInProduction(t *testing.T) {
	t.Cleanup(func() { AppConfig.Env, AppConfig.JWTSecret = "development", "" })

	tests := []struct {
		name   string
		env    string
		secret string
		want   error
	}{
		{"production without secret", "production", "", ErrMissingJWTSecret},
		{"production with blank secret", "production", "   ", ErrMissingJWTSecret},
		{"production with secret", "production", "s3cret", nil},
		{"development falls back", "development", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AppConfig.Env, AppConfig.JWTSecret = tt.env, tt.secret
			assert.ErrorIs(t, Validate(), tt.want)
		})
	}
}

func TestIsProduction(t *testing.T) {
	AppConfig.Env = "production"
	assert.True(t, IsProduction())
	AppConfig.Env = "development"
	assert.False(t, IsProduction())
}
