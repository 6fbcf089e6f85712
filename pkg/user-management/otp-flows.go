package usermanagement

import (
	"errors"
	"log/slog"
	"time"

	emailtemplates "github.com/hd-notes/notes-backend/pkg/email-templates"
	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
	umUtils "github.com/hd-notes/notes-backend/pkg/user-management/utils"
)

// SendSignupOTP creates a new account for the email with a fresh verification
// code and mails the code. The email must not belong to an established
// account, the signup and login flows never merge. An account stuck mid
// signup (challenge issued, never verified) gets its challenge re-issued
// instead, which restarts the validity window and invalidates the old code.
func (s *Service) SendSignupOTP(email string) error {
	email = umUtils.SanitizeEmail(email)
	if !umUtils.CheckEmailFormat(email) {
		return NewError(ErrorKindValidation, "invalid email format")
	}

	user, err := s.users.GetUserByEmail(email)
	if err == nil {
		if signupCompleted(user) {
			return ErrAccountExists
		}
		return s.reissueSignupChallenge(user, email)
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return WrapError(ErrorKindInternal, "failed to look up account", err)
	}

	vc, err := s.newVerificationCode()
	if err != nil {
		return WrapError(ErrorKindInternal, "failed to generate verification code", err)
	}

	newUser := userTypes.User{
		Account: userTypes.Account{
			AccountID:        email,
			VerificationCode: &vc,
		},
		Timestamps: userTypes.Timestamps{
			CreatedAt: s.now().Unix(),
		},
	}
	if _, err := s.users.AddUser(newUser); err != nil {
		// a concurrent signup may have won the unique-email race
		if errors.Is(err, ErrAccountExists) {
			return ErrAccountExists
		}
		return WrapError(ErrorKindInternal, "failed to create account", err)
	}

	// The account and its challenge stay in place even if delivery fails,
	// the user can re-request a code through the same endpoint.
	return s.deliverOTP(email, vc)
}

// signupCompleted reports whether the account ever got past the challenge
// stage. Only such accounts block a new signup request for their email.
func signupCompleted(user userTypes.User) bool {
	return user.Profile.Name != "" || user.Account.HasGoogleLink() || user.Timestamps.LastLogin > 0
}

func (s *Service) reissueSignupChallenge(user userTypes.User, email string) error {
	vc, err := s.newVerificationCode()
	if err != nil {
		return WrapError(ErrorKindInternal, "failed to generate verification code", err)
	}
	if err := s.users.SetVerificationCode(user.ID.Hex(), vc); err != nil {
		return WrapError(ErrorKindInternal, "failed to store verification code", err)
	}
	return s.deliverOTP(email, vc)
}

// SendLoginOTP replaces the pending verification code of an existing account
// and mails the new code. Any previously issued code becomes invalid.
func (s *Service) SendLoginOTP(email string) error {
	email = umUtils.SanitizeEmail(email)
	if !umUtils.CheckEmailFormat(email) {
		return NewError(ErrorKindValidation, "invalid email format")
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return WrapError(ErrorKindInternal, "failed to look up account", err)
	}

	vc, err := s.newVerificationCode()
	if err != nil {
		return WrapError(ErrorKindInternal, "failed to generate verification code", err)
	}
	if err := s.users.SetVerificationCode(user.ID.Hex(), vc); err != nil {
		return WrapError(ErrorKindInternal, "failed to store verification code", err)
	}

	return s.deliverOTP(email, vc)
}

// VerifySignupOTP completes the signup flow: it consumes the pending code and
// writes the profile. The name is required, birthDate may be zero.
func (s *Service) VerifySignupOTP(email string, code string, name string, birthDate time.Time) (userTypes.User, error) {
	user, err := s.verifyOTP(email, code, name, true)
	if err != nil {
		return userTypes.User{}, err
	}

	profile := userTypes.Profile{Name: name, BirthDate: birthDate}
	if err := s.users.UpdateProfile(user.ID.Hex(), profile); err != nil {
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to store profile", err)
	}
	user.Profile = profile

	s.markLoggedIn(&user)
	return user, nil
}

// VerifyLoginOTP completes the login flow by consuming the pending code.
func (s *Service) VerifyLoginOTP(email string, code string) (userTypes.User, error) {
	user, err := s.verifyOTP(email, code, "", false)
	if err != nil {
		return userTypes.User{}, err
	}

	s.markLoggedIn(&user)
	return user, nil
}

func (s *Service) newVerificationCode() (userTypes.VerificationCode, error) {
	code, err := umUtils.GenerateOTPCode(umUtils.OTP_CODE_LENGTH)
	if err != nil {
		return userTypes.VerificationCode{}, err
	}
	now := s.now()
	return userTypes.VerificationCode{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.otpTTL),
	}, nil
}

func (s *Service) deliverOTP(email string, vc userTypes.VerificationCode) error {
	subject, text, html, err := emailtemplates.BuildOTPEmail(vc.Code, s.otpTTL)
	if err != nil {
		return WrapError(ErrorKindInternal, "failed to build verification email", err)
	}
	if err := s.email.Send([]string{email}, subject, text, html); err != nil {
		slog.Error("failed to send verification email", slog.String("email", umUtils.BlurEmailAddress(email)), slog.String("error", err.Error()))
		return WrapError(ErrorKindDelivery, "failed to send verification email", err)
	}
	return nil
}

// verifyOTP runs the shared checks of both flows. The code must match the
// currently stored challenge exactly before expiry is considered, so a
// matching-but-late code reports expired_code while a wrong one reports
// invalid_code. A required, empty name fails before the code is consumed so
// the challenge stays usable for a corrected request.
func (s *Service) verifyOTP(email string, code string, name string, nameRequired bool) (userTypes.User, error) {
	email = umUtils.SanitizeEmail(email)

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return userTypes.User{}, ErrAccountNotFound
		}
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to look up account", err)
	}

	vc := user.Account.VerificationCode
	if vc == nil || vc.Code != code {
		return userTypes.User{}, NewError(ErrorKindInvalidCode, "invalid verification code")
	}
	if vc.IsExpired(s.now()) {
		return userTypes.User{}, NewError(ErrorKindExpiredCode, "verification code has expired")
	}
	if nameRequired && name == "" {
		return userTypes.User{}, NewError(ErrorKindValidation, "name is required")
	}

	consumed, err := s.users.ConsumeVerificationCode(user.ID.Hex(), code)
	if err != nil {
		return userTypes.User{}, WrapError(ErrorKindInternal, "failed to consume verification code", err)
	}
	if !consumed {
		// a newer challenge replaced this one between read and consume
		return userTypes.User{}, NewError(ErrorKindInvalidCode, "invalid verification code")
	}

	user.Account.VerificationCode = nil
	return user, nil
}

func (s *Service) markLoggedIn(user *userTypes.User) {
	now := s.now()
	if err := s.users.SetLastLogin(user.ID.Hex(), now); err != nil {
		slog.Warn("failed to update last login", slog.String("userID", user.ID.Hex()), slog.String("error", err.Error()))
		return
	}
	user.Timestamps.LastLogin = now.Unix()
}
