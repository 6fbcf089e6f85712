package apihandlers

import (
	"net/http"
	"time"

	noteDB "github.com/hd-notes/notes-backend/pkg/db/note"
	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	authService    *usermanagement.Service
	noteDBConn     *noteDB.NoteDBService
	tokenSignKey   string
	tokenExpiresIn time.Duration
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	authService *usermanagement.Service,
	noteDBConn *noteDB.NoteDBService,
) *HttpEndpoints {
	return &HttpEndpoints{
		authService:    authService,
		noteDBConn:     noteDBConn,
		tokenSignKey:   tokenSignKey,
		tokenExpiresIn: tokenExpiresIn,
	}
}
