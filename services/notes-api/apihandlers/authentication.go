package apihandlers

import (
	"log/slog"
	"net/http"
	"time"

	mw "github.com/hd-notes/notes-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/hd-notes/notes-backend/pkg/jwt-handling"
	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	umUtils "github.com/hd-notes/notes-backend/pkg/user-management/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
)

const birthDateLayout = "2006-01-02"

func (h *HttpEndpoints) AddAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/send-signup-otp", mw.RequirePayload(), h.sendSignupOTP)
		authGroup.POST("/send-login-otp", mw.RequirePayload(), h.sendLoginOTP)
		authGroup.POST("/verify-signup-otp", mw.RequirePayload(), h.verifySignupOTP)
		authGroup.POST("/verify-login-otp", mw.RequirePayload(), h.verifyLoginOTP)
		authGroup.POST("/google", mw.RequirePayload(), h.loginWithGoogle)

		authGroup.GET("/me", mw.GetAndValidateUserJWT(h.tokenSignKey), h.getMe)
	}
}

// statusForErrorKind maps the failure classification onto HTTP status codes.
// The kind itself travels in the body so clients do not have to guess which
// 400 they got.
func statusForErrorKind(kind usermanagement.ErrorKind) int {
	switch kind {
	case usermanagement.ErrorKindValidation,
		usermanagement.ErrorKindInvalidCode,
		usermanagement.ErrorKindExpiredCode:
		return http.StatusBadRequest
	case usermanagement.ErrorKindConflict:
		return http.StatusConflict
	case usermanagement.ErrorKindNotFound:
		return http.StatusNotFound
	case usermanagement.ErrorKindOAuth,
		usermanagement.ErrorKindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeAuthError(c *gin.Context, err error) {
	kind := usermanagement.KindOf(err)
	status := statusForErrorKind(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// do not leak infrastructure details
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg, "errorKind": string(kind)})
}

type SendOTPReq struct {
	Email string `json:"email"`
}

func (h *HttpEndpoints) sendSignupOTP(c *gin.Context) {
	var req SendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SendSignupOTP(req.Email); err != nil {
		slog.Warn("signup code request failed", slog.String("email", umUtils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	slog.Info("signup code sent", slog.String("email", umUtils.BlurEmailAddress(req.Email)))
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

func (h *HttpEndpoints) sendLoginOTP(c *gin.Context) {
	var req SendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SendLoginOTP(req.Email); err != nil {
		slog.Warn("login code request failed", slog.String("email", umUtils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	slog.Info("login code sent", slog.String("email", umUtils.BlurEmailAddress(req.Email)))
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

type VerifySignupOTPReq struct {
	Email     string `json:"email"`
	OTP       string `json:"otp"`
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
}

func (h *HttpEndpoints) verifySignupOTP(c *gin.Context) {
	var req VerifySignupOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var birthDate time.Time
	if req.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth date", "errorKind": string(usermanagement.ErrorKindValidation)})
			return
		}
		birthDate = parsed
	}

	user, err := h.authService.VerifySignupOTP(req.Email, req.OTP, req.Name, birthDate)
	if err != nil {
		slog.Warn("signup verification failed", slog.String("email", umUtils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	h.respondWithSession(c, user)
}

type VerifyLoginOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *HttpEndpoints) verifyLoginOTP(c *gin.Context) {
	var req VerifyLoginOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.VerifyLoginOTP(req.Email, req.OTP)
	if err != nil {
		slog.Warn("login verification failed", slog.String("email", umUtils.BlurEmailAddress(req.Email)), slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	h.respondWithSession(c, user)
}

type GoogleLoginReq struct {
	Code        string `json:"code"`
	AccessToken string `json:"accessToken"`
}

func (h *HttpEndpoints) loginWithGoogle(c *gin.Context) {
	var req GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Code == "" && req.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code or accessToken is required", "errorKind": string(usermanagement.ErrorKindValidation)})
		return
	}

	user, err := h.authService.LoginWithGoogle(c.Request.Context(), req.Code, req.AccessToken)
	if err != nil {
		slog.Warn("google login failed", slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	h.respondWithSession(c, user)
}

func (h *HttpEndpoints) getMe(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)

	user, err := h.authService.GetProfile(token.Subject)
	if err != nil {
		slog.Warn("failed to load profile", slog.String("userID", token.Subject), slog.String("error", err.Error()))
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// respondWithSession mints a fresh session token for the authenticated user.
// Both OTP flows and the Google flow converge here, the token does not encode
// how the user proved their identity.
func (h *HttpEndpoints) respondWithSession(c *gin.Context, user userTypes.User) {
	token, err := jwthandling.GenerateNewUserToken(
		h.tokenExpiresIn,
		user.ID.Hex(),
		uuid.NewString(),
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate session token", slog.String("userID", user.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "errorKind": string(usermanagement.ErrorKindInternal)})
		return
	}

	slog.Info("login successful", slog.String("subject", user.ID.Hex()))

	c.JSON(http.StatusOK, gin.H{
		"token": gin.H{
			"accessToken": token,
			"expiresIn":   h.tokenExpiresIn.Seconds(),
		},
		"user": user,
	})
}
