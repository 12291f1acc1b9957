package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"laughschool/board"
	"laughschool/config"
	"laughschool/media"
	"laughschool/store"
)

// Handler carries the board engine and configuration into the gin handlers.
type Handler struct {
	board        *board.Service
	cfg          config.Config
	passwordHash []byte
}

// New hashes the shared admin password once so login never compares
// plaintext directly.
func New(b *board.Service, cfg config.Config) (*Handler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Handler{board: b, cfg: cfg, passwordHash: hash}, nil
}

// respondError maps engine errors onto HTTP statuses. Anything outside the
// known taxonomy is a storage-level failure and stays generic.
func respondError(c *gin.Context, err error) {
	var verr *board.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, board.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option"})
	case errors.Is(err, board.ErrNotPoll):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is not a poll"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, media.ErrUnsupportedMedia):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only images and videos are allowed"})
	case errors.Is(err, media.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
