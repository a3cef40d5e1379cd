package jwt

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-key-for-testing-purposes"
	testRefreshSecret = "test-refresh-secret-key-for-testing-purposes"
	testEmail         = "admin@asgtransit.cr"
)

func newTestService() *Service {
	return NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
}

func TestNewService(t *testing.T) {
	service := newTestService()

	assert.NotNil(t, service)
	assert.Equal(t, time.Hour, service.AccessTokenExpiry())
	assert.Equal(t, 24*time.Hour, service.RefreshTokenExpiry())
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateAccessToken(testEmail, []string{"admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, claims.Email)
	assert.Equal(t, testEmail, claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("driver"))
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateRefreshToken(testEmail)
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, claims.Email)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Empty(t, claims.Roles)
}

func TestTokenTypeMismatch(t *testing.T) {
	service := NewService(testAccessSecret, testAccessSecret, time.Hour, time.Hour)

	refresh, err := service.GenerateRefreshToken(testEmail)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")
}

func TestWrongSecret(t *testing.T) {
	service := newTestService()
	other := NewService("another-secret", testRefreshSecret, time.Hour, time.Hour)

	token, err := other.GenerateAccessToken(testEmail, []string{"admin"})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)

	token, err := service.GenerateAccessToken(testEmail, []string{"admin"})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestGetTokenExpiry(t *testing.T) {
	service := newTestService()

	before := time.Now().Add(time.Hour).Add(-time.Second)
	token, err := service.GenerateAccessToken(testEmail, nil)
	require.NoError(t, err)

	expiry, err := service.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, expiry.After(before))

	_, err = service.GetTokenExpiry("not-a-token")
	assert.Error(t, err)
}

func TestTokenSigningMethod(t *testing.T) {
	service := newTestService()

	claims := Claims{
		Email:     testEmail,
		Roles:     []string{"admin"},
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(unsigned)
	assert.Error(t, err)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := newTestService()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := service.GenerateAccessToken(testEmail, []string{"admin"})
			if err == nil {
				_, err = service.ValidateAccessToken(token)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
