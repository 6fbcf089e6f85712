package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/hd-notes/notes-backend/pkg/apihelpers/middlewares"
	noteDB "github.com/hd-notes/notes-backend/pkg/db/note"
	jwthandling "github.com/hd-notes/notes-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddNotesAPI(rg *gin.RouterGroup) {
	notesGroup := rg.Group("/notes")
	notesGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		notesGroup.GET("", h.getNotes)
		notesGroup.POST("", mw.RequirePayload(), h.createNote)
		notesGroup.DELETE("/:id", h.deleteNote)
	}
}

func (h *HttpEndpoints) getNotes(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)

	notes, err := h.noteDBConn.GetNotesForUser(token.Subject)
	if err != nil {
		slog.Error("failed to load notes", slog.String("userID", token.Subject), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

type CreateNoteReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *HttpEndpoints) createNote(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)

	var req CreateNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	note, err := h.noteDBConn.AddNote(token.Subject, req.Title, req.Content)
	if err != nil {
		slog.Error("failed to create note", slog.String("userID", token.Subject), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}

func (h *HttpEndpoints) deleteNote(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)

	noteID := c.Param("id")
	if err := h.noteDBConn.DeleteNote(token.Subject, noteID); err != nil {
		if errors.Is(err, noteDB.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		slog.Error("failed to delete note", slog.String("userID", token.Subject), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "note deleted"})
}
