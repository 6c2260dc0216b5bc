package auth

import (
	"strings"
	"testing"
	"time"

	"rpgserver/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(&config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	s := newTestTokenService()

	access, err := s.IssueAccessToken(42)
	require.NoError(t, err)

	claims, err := s.Validate(access, s.AccessKey())
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	refresh, expiresAt, err := s.IssueRefreshToken(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err = s.Validate(refresh, s.RefreshKey())
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
}

func TestTokenService_ClaimName(t *testing.T) {
	s := newTestTokenService()
	access, err := s.IssueAccessToken(7)
	require.NoError(t, err)

	parsed := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(access, parsed)
	require.NoError(t, err)
	assert.EqualValues(t, 7, parsed["accountsId"])
}

func TestTokenService_UniqueWithinSameSecond(t *testing.T) {
	s := newTestTokenService()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	first, _, err := s.IssueRefreshToken(7)
	require.NoError(t, err)
	second, _, err := s.IssueRefreshToken(7)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := s.Validate(first, s.RefreshKey())
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_Expired(t *testing.T) {
	s := newTestTokenService()
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	access, err := s.IssueAccessToken(42)
	require.NoError(t, err)

	_, err = s.Validate(access, s.AccessKey())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongKey(t *testing.T) {
	s := newTestTokenService()

	access, err := s.IssueAccessToken(42)
	require.NoError(t, err)

	_, err = s.Validate(access, s.RefreshKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_ExpiredWithWrongKeyIsInvalid(t *testing.T) {
	s := newTestTokenService()
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	access, err := s.IssueAccessToken(42)
	require.NoError(t, err)

	_, err = s.Validate(access, s.RefreshKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Malformed(t *testing.T) {
	s := newTestTokenService()

	for _, token := range []string{"", "garbage", "a.b", "invalid.token.string"} {
		_, err := s.Validate(token, s.AccessKey())
		assert.ErrorIs(t, err, ErrTokenMalformed, token)
	}
}

func TestTokenService_Tampered(t *testing.T) {
	s := newTestTokenService()
	access, err := s.IssueAccessToken(42)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	forged, err := newTestTokenService().issueWithClaims(jwt.SigningMethodHS256, Claims{AccountID: 1}, []byte("other"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// 替换载荷，保留原签名
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = s.Validate(tampered, s.AccessKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	s := newTestTokenService()
	claims := Claims{
		AccountID:        42,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}

	hs512, err := s.issueWithClaims(jwt.SigningMethodHS512, claims, s.AccessKey())
	require.NoError(t, err)
	_, err = s.Validate(hs512, s.AccessKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := s.issueWithClaims(jwt.SigningMethodNone, claims, jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Validate(none, s.AccessKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_MissingAccount(t *testing.T) {
	s := newTestTokenService()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := s.issueWithClaims(jwt.SigningMethodHS256, claims, s.AccessKey())
	require.NoError(t, err)

	_, err = s.Validate(token, s.AccessKey())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func (s *TokenService) issueWithClaims(method jwt.SigningMethod, claims Claims, key interface{}) (string, error) {
	return jwt.NewWithClaims(method, claims).SignedString(key)
}
