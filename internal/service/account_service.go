package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/codes"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AccountService coordinates registration, login, email verification and
// password reset flows.
type AccountService struct {
	users      repository.UserRepository
	issuer     *auth.TokenIssuer
	authority  *auth.Authority
	codes      codes.Store
	dispatcher events.Dispatcher
	node       *snowflake.Node
	bcryptCost int
}

// AccountDependencies encapsulates collaborator requirements for the service.
type AccountDependencies struct {
	UserRepo   repository.UserRepository
	Issuer     *auth.TokenIssuer
	Authority  *auth.Authority
	Codes      codes.Store
	Dispatcher events.Dispatcher
	Snowflake  *snowflake.Node
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	return &AccountService{
		users:      deps.UserRepo,
		issuer:     deps.Issuer,
		authority:  deps.Authority,
		codes:      deps.Codes,
		dispatcher: deps.Dispatcher,
		node:       deps.Snowflake,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and issues its first session. The email
// starts unverified, so the session can only drive the verification flow
// until the subject confirms a code.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.User, *domain.SignedSession, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered, try to login instead", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, nil, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, nil, apperrors.NewValidationError(err.Error(), nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		UID:          s.node.Generate().Int64(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.issuer.Issue(ctx, user.UID)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user, nil)
	return user, session, nil
}

// Login authenticates by username or email and mints a session.
func (s *AccountService) Login(ctx context.Context, usernameOrEmail, password string) (*domain.User, *domain.SignedSession, error) {
	var (
		user *domain.User
		err  error
	)
	if emailRegex.MatchString(usernameOrEmail) {
		user, err = s.users.GetByEmail(ctx, usernameOrEmail)
	} else {
		user, err = s.users.GetByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("username or password is wrong")
		}
		return nil, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("username or password is wrong")
	}

	session, err := s.issuer.Issue(ctx, user.UID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// SendVerificationEmail issues a one-time code for the token's subject and
// emails it. The token is checked against signature, expiry and allow-list,
// but not against the verified-email policy, since the caller is by
// definition not verified yet.
func (s *AccountService) SendVerificationEmail(ctx context.Context, rawToken string) error {
	user, err := s.subjectFromToken(ctx, rawToken)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return apperrors.NewConflict("your email is already verified", nil)
	}

	code, err := s.codes.Issue(ctx, user.UID, codes.PurposeEmailVerify)
	if err != nil {
		return mapCodeError(err)
	}

	s.publish(ctx, events.EventVerificationCodeIssued, user, map[string]any{"code": code})
	return nil
}

// ConfirmEmail consumes the pending verification code, marks the email
// verified and mints a fresh session. The cached user state is invalidated
// before success is reported, so no later authorize call can observe the
// unverified copy.
func (s *AccountService) ConfirmEmail(ctx context.Context, rawToken, submittedCode string) (*domain.SignedSession, error) {
	user, err := s.subjectFromToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if _, ok, err := s.codes.Peek(ctx, user.UID, codes.PurposeEmailVerify); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.NewConflict("no pending verification code", nil)
	}

	ok, err := s.codes.Consume(ctx, user.UID, codes.PurposeEmailVerify, submittedCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("the verification code is wrong")
	}

	if err := s.users.SetEmailVerified(ctx, user.UID, true); err != nil {
		return nil, err
	}
	s.authority.InvalidateUser(user.UID)

	session, err := s.issuer.Issue(ctx, user.UID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventEmailVerified, user, nil)
	return session, nil
}

// RequestPasswordReset issues a reset code for the account behind the email.
// The email must have been verified before, to prove the requester once
// controlled the address.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return err
	}

	if !user.EmailVerified {
		return apperrors.NewConflict("verify your email before requesting a password change", nil)
	}

	code, err := s.codes.Issue(ctx, user.UID, codes.PurposePasswordReset)
	if err != nil {
		return mapCodeError(err)
	}

	s.publish(ctx, events.EventPasswordResetCodeIssued, user, map[string]any{"code": code})
	return nil
}

// ResetPassword validates the reset code and replaces the password. Every
// outstanding session is revoked and the cache invalidated before success
// is reported. A code mismatch does not consume the code, so the subject
// may retry within the window.
func (s *AccountService) ResetPassword(ctx context.Context, email, submittedCode, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return err
	}

	code, ok, err := s.codes.Peek(ctx, user.UID, codes.PurposePasswordReset)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewConflict("no pending reset code", nil)
	}
	if code != submittedCode {
		return apperrors.NewUnauthorized("the reset code is wrong")
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.SetPasswordHash(ctx, user.UID, hash); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, user.UID, codes.PurposePasswordReset); err != nil {
		return err
	}
	if err := s.issuer.RevokeAll(ctx, user.UID); err != nil {
		return err
	}
	s.authority.InvalidateUser(user.UID)

	s.publish(ctx, events.EventPasswordChanged, user, nil)
	return nil
}

// ChangePassword verifies the current password before updating to the new
// hash, then logs the subject out everywhere.
func (s *AccountService) ChangePassword(ctx context.Context, subjectID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.SetPasswordHash(ctx, subjectID, hash); err != nil {
		return err
	}
	if err := s.issuer.RevokeAll(ctx, subjectID); err != nil {
		return err
	}
	s.authority.InvalidateUser(subjectID)

	s.publish(ctx, events.EventPasswordChanged, user, nil)
	return nil
}

// LogoutAll revokes every outstanding session for the subject.
func (s *AccountService) LogoutAll(ctx context.Context, subjectID int64) error {
	return s.issuer.RevokeAll(ctx, subjectID)
}

// GetAccount loads the authoritative account record.
func (s *AccountService) GetAccount(ctx context.Context, subjectID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) subjectFromToken(ctx context.Context, rawToken string) (*domain.User, error) {
	session, err := s.issuer.Verify(ctx, rawToken)
	if err != nil {
		return nil, auth.MapDecisionError(err)
	}

	user, err := s.users.GetByID(ctx, session.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("no user associated with this token")
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload map[string]any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: user.UID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func mapCodeError(err error) error {
	var retryErr *codes.RetryAfterError
	if errors.As(err, &retryErr) {
		return apperrors.NewRetryAfter(retryErr.Wait)
	}
	return err
}
