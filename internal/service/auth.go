package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/admin-portal/internal/config"
	"github.com/iliyamo/admin-portal/internal/model"
	"github.com/iliyamo/admin-portal/internal/repository"
	"github.com/iliyamo/admin-portal/internal/utils"
)

// AuthService orchestrates login, registration and token validation.  It
// is constructed once in main and passed to the handlers that need it;
// nothing reaches it through a package-level singleton.
type AuthService struct {
	Cfg   config.Config
	DB    *sql.DB
	Users *repository.UserRepo
	Keys  *repository.KeyRepo
	Audit *Recorder

	now func() time.Time
}

func NewAuthService(cfg config.Config, db *sql.DB, users *repository.UserRepo, keys *repository.KeyRepo, audit *Recorder) *AuthService {
	return &AuthService{
		Cfg:   cfg,
		DB:    db,
		Users: users,
		Keys:  keys,
		Audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput is the payload for Register.  AccessKey is optional; Role
// must name one of the five job titles.
type RegisterInput struct {
	Username  string
	Email     string
	Role      string
	Password  string
	AccessKey string
}

// RegisterResult carries the outcome message and the redacted view of the
// new account.
type RegisterResult struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// LoginResult carries a freshly signed bearer token and the redacted view
// of the authenticated user.
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        model.PublicUser `json:"user"`
}

// Login verifies a username/password pair and issues a bearer token.
// Lookups and comparisons are case-sensitive exact matches with no
// normalization.  Unknown username and wrong password both come back as
// ErrInvalidCredentials; a non-ACTIVE account with a correct password
// comes back as ErrAccountInactive and never receives a token.
func (s *AuthService) Login(ctx context.Context, username, password string, meta RequestMeta) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Audit.Record(ctx, nil, "user.login.denied", "unknown username", meta)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.Audit.Record(ctx, &u.ID, "user.login.denied", "wrong password", meta)
		return LoginResult{}, ErrInvalidCredentials
	}
	if u.Status != model.UserActive {
		s.Audit.Record(ctx, &u.ID, "user.login.denied", "account "+strings.ToLower(string(u.Status)), meta)
		return LoginResult{}, ErrAccountInactive
	}

	// Best-effort: failing to stamp the login must not fail the login.
	if err := s.Users.UpdateLastLogin(ctx, u.ID); err != nil {
		log.Printf("auth: update last login for user %d failed: %v", u.ID, err)
	}

	tok, err := utils.NewAccessToken(s.Cfg.JWTSecret, u, s.Cfg.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	s.Audit.Record(ctx, &u.ID, "user.login", "login ok", meta)
	return LoginResult{AccessToken: tok.Token, ExpiresAt: tok.Exp, User: u.Public()}, nil
}

// Register creates a new account under one of three mutually exclusive
// policies, in precedence order:
//
//  1. first-user bootstrap: an empty user table grants DEVELOPER
//     unconditionally, regardless of any supplied key, so the system is
//     never left without an administrator;
//  2. keyed: a supplied access key grants the key's permission and
//     consumes one use, atomically with the user insert;
//  3. public: no key grants VISITOR.
//
// An invalid key is a hard rejection; it never falls back to policy 3.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (RegisterResult, error) {
	role, err := s.validateRegister(&in)
	if err != nil {
		return RegisterResult{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.Cfg.BcryptCost)
	if err != nil {
		return RegisterResult{}, err
	}
	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         role,
		PasswordHash: hash,
		Status:       model.UserActive,
	}

	total, err := s.Users.Count(ctx)
	if err != nil {
		return RegisterResult{}, err
	}

	switch {
	case total == 0:
		u.Permission = model.PermissionDeveloper
		if err := s.Users.Create(ctx, &u); err != nil {
			return RegisterResult{}, err
		}
		s.Audit.Record(ctx, &u.ID, "user.register", "first-user bootstrap, permission DEVELOPER", meta)
		return RegisterResult{Message: "first user registered with developer access", User: u.Public()}, nil

	case in.AccessKey != "":
		if err := s.registerWithKey(ctx, &u, in.AccessKey); err != nil {
			return RegisterResult{}, err
		}
		s.Audit.Record(ctx, &u.ID, "user.register", "keyed registration, permission "+u.Permission.String(), meta)
		return RegisterResult{Message: "user registered with access key", User: u.Public()}, nil

	default:
		u.Permission = model.PermissionVisitor
		if err := s.Users.Create(ctx, &u); err != nil {
			return RegisterResult{}, err
		}
		s.Audit.Record(ctx, &u.ID, "user.register", "public registration, permission VISITOR", meta)
		return RegisterResult{Message: "user registered", User: u.Public()}, nil
	}
}

// registerWithKey locks the key row, validates it, and commits the user
// insert together with the use-count increment.  The row lock plus the
// conditional update in ConsumeTx guarantee a SINGLE_USE key cannot be
// redeemed twice under concurrent submissions.
func (s *AuthService) registerWithKey(ctx context.Context, u *model.User, code string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	k, err := s.Keys.GetByKeyForUpdate(ctx, tx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrKeyNotFound
		}
		return err
	}
	if err := s.checkKey(ctx, k); err != nil {
		return err
	}

	u.Permission = k.Permission
	if err := s.Users.CreateTx(ctx, tx, u); err != nil {
		return err
	}
	if err := s.Keys.ConsumeTx(ctx, tx, k.ID); err != nil {
		// The conditional update raced with another redemption.
		if errors.Is(err, repository.ErrNotFound) {
			return ErrKeyExhausted
		}
		return err
	}
	return tx.Commit()
}

// checkKey decides whether a locked key may be redeemed right now.  Each
// failure has its own user-facing reason.  An expired key is also flipped
// to EXPIRED outside the transaction, best-effort.
func (s *AuthService) checkKey(ctx context.Context, k model.AccessKey) error {
	switch k.Status {
	case model.KeyActive:
		// fall through to expiry/exhaustion checks
	case model.KeyUsed:
		return ErrKeyExhausted
	case model.KeyExpired:
		return ErrKeyExpired
	default:
		return ErrKeyInactive
	}
	if k.ExpiredAt(s.now()) {
		if err := s.Keys.MarkExpired(ctx, k.ID); err != nil {
			log.Printf("auth: mark key %d expired failed: %v", k.ID, err)
		}
		return ErrKeyExpired
	}
	if k.Exhausted() {
		return ErrKeyExhausted
	}
	return nil
}

// validateRegister enforces the input contract shared by all three
// registration policies.  An unrecognized role is rejected loudly rather
// than defaulted to any title.
func (s *AuthService) validateRegister(in *RegisterInput) (model.Role, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.AccessKey = strings.TrimSpace(in.AccessKey)

	if n := len(in.Username); n < 1 || n > 50 {
		return "", fmt.Errorf("%w: username must be 1-50 characters", ErrValidation)
	}
	if n := len(in.Email); n < 1 || n > 100 {
		return "", fmt.Errorf("%w: email must be 1-100 characters", ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return "", fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if len(in.Password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return role, nil
}

// ValidateToken verifies a raw bearer token and re-checks the subject's
// current status against the store, so a token issued before a
// deactivation stops working immediately rather than at expiry.  Any
// failure is reported as utils.ErrInvalidToken with no further detail.
func (s *AuthService) ValidateToken(ctx context.Context, raw string) (utils.Claims, error) {
	claims, err := utils.ParseAccessToken(s.Cfg.JWTSecret, raw)
	if err != nil {
		return utils.Claims{}, utils.ErrInvalidToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u.Status != model.UserActive {
		return utils.Claims{}, utils.ErrInvalidToken
	}
	return claims, nil
}
