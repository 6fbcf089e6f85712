package usermanagement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hd-notes/notes-backend/pkg/oauth"
	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
	umUtils "github.com/hd-notes/notes-backend/pkg/user-management/utils"
)

// LoginWithGoogle resolves an OAuth proof (either an authorization code or an
// access token, whichever the client obtained) to a verified identity and
// upserts the matching account. Provider-side rejections are terminal for
// this attempt, the client has to restart the OAuth flow.
func (s *Service) LoginWithGoogle(ctx context.Context, authorizationCode string, accessToken string) (userTypes.User, error) {
	var (
		identity oauth.Identity
		err      error
	)
	switch {
	case authorizationCode != "":
		identity, err = s.google.ExchangeCode(ctx, authorizationCode)
	case accessToken != "":
		identity, err = s.google.VerifyAccessToken(ctx, accessToken)
	default:
		return userTypes.User{}, NewError(ErrorKindValidation, "authorization code or access token is required")
	}
	if err != nil {
		return userTypes.User{}, WrapError(ErrorKindOAuth, "google sign-in failed", err)
	}
	if identity.Email == "" || identity.Subject == "" {
		return userTypes.User{}, NewError(ErrorKindOAuth, "google identity is incomplete")
	}

	email := umUtils.SanitizeEmail(identity.Email)

	user, err := s.users.GetUserByEmail(email)
	if errors.Is(err, ErrAccountNotFound) {
		user, err = s.createGoogleUser(email, identity)
		if err != nil {
			return userTypes.User{}, err
		}
	} else if err != nil {
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to look up account", err)
	} else if !user.Account.HasGoogleLink() {
		// first Google sign-in of an account created through OTP
		if err := s.users.LinkGoogleAccount(user.ID.Hex(), identity.Subject); err != nil {
			return userTypes.User{}, WrapError(ErrorKindInternal, "failed to link google account", err)
		}
		user.Account.GoogleID = identity.Subject
	} else if user.Account.GoogleID != identity.Subject {
		// the existing link wins, relink attempts are not an error
		slog.Warn("google subject differs from stored link", slog.String("userID", user.ID.Hex()))
	}

	s.markLoggedIn(&user)
	user.Account.VerificationCode = nil
	return user, nil
}

func (s *Service) createGoogleUser(email string, identity oauth.Identity) (userTypes.User, error) {
	name := identity.Name
	if name == "" {
		name = umUtils.EmailLocalPart(email)
	}
	newUser := userTypes.User{
		Account: userTypes.Account{
			AccountID: email,
			GoogleID:  identity.Subject,
		},
		Profile: userTypes.Profile{Name: name},
		Timestamps: userTypes.Timestamps{
			CreatedAt: s.now().Unix(),
		},
	}

	id, err := s.users.AddUser(newUser)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			// lost a creation race, use whoever won
			user, gErr := s.users.GetUserByEmail(email)
			if gErr != nil {
				return userTypes.User{}, WrapError(ErrorKindInternal, "failed to look up account", gErr)
			}
			return user, nil
		}
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to create account", err)
	}

	user, err := s.users.GetUser(id)
	if err != nil {
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to load created account", err)
	}
	return user, nil
}
