package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"rpgserver/internal/auth"
	"rpgserver/internal/metrics"
	"rpgserver/internal/model"
	"rpgserver/internal/repository"

	"gorm.io/gorm"
)

type AccountService struct {
	db          *gorm.DB
	accountRepo *repository.AccountRepository
	tokenRepo   *repository.TokenRepository
	tokens      *auth.TokenService
	hasher      auth.PasswordHasher
	throttle    auth.LoginThrottle
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewAccountService(db *gorm.DB, tokens *auth.TokenService, hasher auth.PasswordHasher,
	throttle auth.LoginThrottle, m *metrics.Metrics, logger *slog.Logger) *AccountService {
	if throttle == nil {
		throttle = auth.NoopThrottle{}
	}
	return &AccountService{
		db:          db,
		accountRepo: repository.NewAccountRepository(db),
		tokenRepo:   repository.NewTokenRepository(db),
		tokens:      tokens,
		hasher:      hasher,
		throttle:    throttle,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterInput 格式校验由 handler 完成
type RegisterInput struct {
	LoginID  string
	Password string
	Name     string
	Age      int
}

// Register 创建账户和账户资料
func (s *AccountService) Register(ctx context.Context, in *RegisterInput) (*model.Account, error) {
	exists, err := s.accountRepo.ExistsByLoginID(ctx, in.LoginID)
	if err != nil {
		return nil, wrap("account", err, "查询账户失败", "login_id", in.LoginID)
	}
	if exists {
		return nil, ErrDuplicateLoginID
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, invalid("password", "password 不能超过 72 字节")
	}
	if err != nil {
		return nil, wrap("account", err, "密码哈希失败")
	}

	account := &model.Account{
		LoginID:  in.LoginID,
		Password: hash,
		Role:     model.RolePlayer,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateLoginID
			}
			return err
		}
		info := &model.AccountInfo{AccountID: account.ID, Name: in.Name, Age: in.Age}
		if err := s.accountRepo.CreateInfo(ctx, tx, info); err != nil {
			return err
		}
		account.Info = info
		return nil
	}, txOptions)
	if err != nil {
		return nil, wrap("account", err, "注册失败", "login_id", in.LoginID)
	}

	s.logger.InfoContext(ctx, "账户注册成功", "account_id", account.ID, "login_id", account.LoginID)
	return account, nil
}

type LoginInput struct {
	LoginID   string
	Password  string
	IP        string
	UserAgent string
}

type LoginResult struct {
	Account          *model.Account
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Login 校验密码并签发 token
// 账户已有未过期的 refresh token 时复用，否则签发新的并落库
func (s *AccountService) Login(ctx context.Context, in *LoginInput) (*LoginResult, error) {
	allowed, err := s.throttle.Allow(ctx, in.LoginID)
	if err != nil {
		// 限流组件故障不阻止登录
		s.logger.WarnContext(ctx, "登录限流检查失败", "error", err)
	} else if !allowed {
		s.recordLogin("locked")
		return nil, ErrTooManyAttempts
	}

	account, err := s.accountRepo.GetByLoginID(ctx, in.LoginID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.loginFailed(ctx, in.LoginID)
			return nil, ErrInvalidCredentials
		}
		return nil, wrap("account", err, "查询账户失败", "login_id", in.LoginID)
	}

	ok, err := s.hasher.Verify(in.Password, account.Password)
	if err != nil {
		return nil, wrap("account", err, "校验密码失败", "account_id", account.ID)
	}
	if !ok {
		s.loginFailed(ctx, in.LoginID)
		return nil, ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, in.LoginID); err != nil {
		s.logger.WarnContext(ctx, "重置登录限流失败", "error", err)
	}

	accessToken, err := s.tokens.IssueAccessToken(account.ID)
	if err != nil {
		return nil, wrap("account", err, "签发 access token 失败")
	}

	result := &LoginResult{Account: account, AccessToken: accessToken}

	existing, err := s.tokenRepo.GetUsableByAccountID(ctx, account.ID, s.now())
	switch {
	case err == nil:
		result.RefreshToken = existing.Token
		result.RefreshExpiresAt = existing.ExpiresAt
	case errors.Is(err, repository.ErrTokenNotFound):
		refreshToken, expiresAt, err := s.tokens.IssueRefreshToken(account.ID)
		if err != nil {
			return nil, wrap("account", err, "签发 refresh token 失败")
		}
		record := &model.RefreshToken{
			AccountID: account.ID,
			Token:     refreshToken,
			IP:        in.IP,
			UserAgent: truncate(in.UserAgent, 255),
			ExpiresAt: expiresAt,
		}
		if err := s.tokenRepo.Create(ctx, record); err != nil {
			return nil, wrap("account", err, "保存 refresh token 失败", "account_id", account.ID)
		}
		result.RefreshToken = refreshToken
		result.RefreshExpiresAt = expiresAt
	default:
		return nil, wrap("account", err, "查询 refresh token 失败", "account_id", account.ID)
	}

	s.recordLogin("success")
	s.logger.InfoContext(ctx, "登录成功", "account_id", account.ID)
	return result, nil
}

func (s *AccountService) loginFailed(ctx context.Context, loginID string) {
	s.recordLogin("failure")
	if err := s.throttle.RecordFailure(ctx, loginID); err != nil {
		s.logger.WarnContext(ctx, "记录登录失败次数失败", "error", err)
	}
}

func (s *AccountService) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// Logout 删除 cookie 对应的 refresh token，token 不存在也视为成功
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.tokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return wrap("account", err, "删除 refresh token 失败")
	}
	return nil
}

// Authenticate 校验 access token 并加载账户
// token 错误原样返回 auth.ErrToken*，账户已不存在返回 ErrUnauthenticated
func (s *AccountService) Authenticate(ctx context.Context, accessToken string) (*model.Account, error) {
	claims, err := s.tokens.Validate(accessToken, s.tokens.AccessKey())
	if err != nil {
		return nil, err
	}
	return s.loadAccount(ctx, claims.AccountID)
}

// Refresh 使用 refresh token 换取新的 access token
// 要求数据库中存在同一账户、未过期的记录
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*model.Account, string, error) {
	claims, err := s.tokens.Validate(refreshToken, s.tokens.RefreshKey())
	if err != nil {
		return nil, "", ErrUnauthenticated
	}
	if _, err := s.tokenRepo.GetUsable(ctx, refreshToken, claims.AccountID, s.now()); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", wrap("account", err, "查询 refresh token 失败")
	}

	account, err := s.loadAccount(ctx, claims.AccountID)
	if err != nil {
		return nil, "", err
	}
	accessToken, err := s.tokens.IssueAccessToken(account.ID)
	if err != nil {
		return nil, "", wrap("account", err, "签发 access token 失败")
	}
	return account, accessToken, nil
}

func (s *AccountService) loadAccount(ctx context.Context, accountID int64) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, wrap("account", err, "查询账户失败", "account_id", accountID)
	}
	return account, nil
}

// GrantRole 修改账户角色，只在命令行中使用
func (s *AccountService) GrantRole(ctx context.Context, loginID, role string) error {
	if role != model.RolePlayer && role != model.RoleAdmin {
		return invalid("role", "未知的角色: "+role)
	}
	if err := s.accountRepo.UpdateRole(ctx, loginID, role); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return wrap("account", err, "修改角色失败", "login_id", loginID)
	}
	s.logger.InfoContext(ctx, "账户角色已修改", "login_id", loginID, "role", role)
	return nil
}

// truncate 按字节截断，不会切开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
