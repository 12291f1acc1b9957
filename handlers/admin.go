package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"laughschool/board"
	"laughschool/middleware"
)

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type EditRequest struct {
	Title   *string  `json:"title"`
	Caption *string  `json:"caption"`
	Options []string `json:"options"`
}

// AdminLogin checks the shared admin password and issues a session token.
// The gate is demo-grade on purpose; it keeps casual visitors out of the
// dashboard, nothing more.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	claims := &middleware.AdminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

// AdminList returns every item, pending ones included, newest first.
func (h *Handler) AdminList(c *gin.Context) {
	items, err := h.board.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// SetApproval toggles feed visibility of one item.
func (h *Handler) SetApproval(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.board.SetApproval(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// EditPost updates mutable text fields: title, caption, poll option texts.
func (h *Handler) EditPost(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.board.Edit(c.Request.Context(), c.Param("id"), board.EditPatch{
		Title:       req.Title,
		Caption:     req.Caption,
		OptionTexts: req.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ResetVotes zeroes every option of one poll. Viewers who already voted
// stay blocked; the ledger is not cleared.
func (h *Handler) ResetVotes(c *gin.Context) {
	item, err := h.board.ResetVotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeletePost removes an item and its stored media. Deleting an absent id
// succeeds, so the dashboard can retry safely.
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.board.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
