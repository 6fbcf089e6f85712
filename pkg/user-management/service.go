package usermanagement

import (
	"context"
	"time"

	"github.com/hd-notes/notes-backend/pkg/oauth"
	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
)

const DefaultOTPTTL = 10 * time.Minute

// UserStore is the persistence boundary for accounts. Implementations must
// enforce the unique-email constraint atomically (AddUser fails with
// ErrAccountExists when a concurrent creator wins) and must apply
// ConsumeVerificationCode as a single conditional write so a verify racing a
// newer issue never consumes a stale challenge.
type UserStore interface {
	AddUser(user userTypes.User) (string, error)
	GetUser(userID string) (userTypes.User, error)
	GetUserByEmail(email string) (userTypes.User, error)
	SetVerificationCode(userID string, vc userTypes.VerificationCode) error
	// ConsumeVerificationCode clears the pending code only if it still equals
	// the given one, and reports whether anything was cleared.
	ConsumeVerificationCode(userID string, code string) (bool, error)
	UpdateProfile(userID string, profile userTypes.Profile) error
	// LinkGoogleAccount sets the Google subject only when no link exists yet.
	// An already-linked account is left untouched.
	LinkGoogleAccount(userID string, googleID string) error
	SetLastLogin(userID string, at time.Time) error
}

// EmailSender delivers a composed message. Any non-nil error is treated as a
// delivery failure by the flows.
type EmailSender interface {
	Send(to []string, subject string, textContent string, htmlContent string) error
}

// IdentityProvider exchanges an OAuth proof for a verified identity.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (oauth.Identity, error)
	VerifyAccessToken(ctx context.Context, accessToken string) (oauth.Identity, error)
}

type ServiceConfig struct {
	OTPTTL time.Duration
}

// Service orchestrates the signup, login and Google flows. All collaborators
// are injected at construction, there is no package level state.
type Service struct {
	users  UserStore
	email  EmailSender
	google IdentityProvider
	otpTTL time.Duration
	now    func() time.Time
}

func NewService(cfg ServiceConfig, users UserStore, email EmailSender, google IdentityProvider) *Service {
	ttl := cfg.OTPTTL
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &Service{
		users:  users,
		email:  email,
		google: google,
		otpTTL: ttl,
		now:    time.Now,
	}
}

// GetProfile loads a user for an authenticated caller. The store's not-found
// error passes through so callers can distinguish a deleted account from an
// infrastructure failure.
func (s *Service) GetProfile(userID string) (userTypes.User, error) {
	return s.users.GetUser(userID)
}
