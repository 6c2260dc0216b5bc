// Package auth 负责令牌签发校验、密码哈希和登录限流
package auth

import (
	"errors"
	"time"

	"rpgserver/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired   = errors.New("token 已过期")
	ErrTokenMalformed = errors.New("token 格式错误")
	ErrTokenInvalid   = errors.New("token 无效")
)

// Claims access token 和 refresh token 共用的载荷
type Claims struct {
	AccountID int64 `json:"accountsId"`
	jwt.RegisteredClaims
}

// TokenService 签发和校验 HS256 令牌
// access token 与 refresh token 使用不同的密钥
type TokenService struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (s *TokenService) AccessKey() []byte  { return s.accessKey }
func (s *TokenService) RefreshKey() []byte { return s.refreshKey }
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken 签发 access token
func (s *TokenService) IssueAccessToken(accountID int64) (string, error) {
	token, _, err := s.issue(accountID, s.accessKey, s.accessTTL)
	return token, err
}

// IssueRefreshToken 签发 refresh token，返回过期时间供调用方落库
func (s *TokenService) IssueRefreshToken(accountID int64) (string, time.Time, error) {
	return s.issue(accountID, s.refreshKey, s.refreshTTL)
}

func (s *TokenService) issue(accountID int64, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			// 同一秒内签发的 token 也互不相同，refresh_tokens.token 有唯一索引
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate 校验 token 并返回载荷
// 错误只会是 ErrTokenExpired / ErrTokenMalformed / ErrTokenInvalid 之一
func (s *TokenService) Validate(tokenString string, key []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		// 签名错误优先于过期，伪造的过期 token 视为无效
		return nil, ErrTokenInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenInvalid
	}

	if claims.AccountID <= 0 || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
