package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laughschool/board"
	"laughschool/media"
	"laughschool/middleware"
	"laughschool/models"
)

type CreatePollRequest struct {
	Title    string   `json:"title" binding:"required"`
	Question string   `json:"question"`
	Options  []string `json:"options" binding:"required"`
}

type VoteRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

// GetFeed returns the public feed: approved items, newest first.
func (h *Handler) GetFeed(c *gin.Context) {
	items, err := h.board.Feed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetPost returns any item by raw id, approved or not.
func (h *Handler) GetPost(c *gin.Context) {
	item, err := h.board.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UploadPost accepts a multipart image/video submission. The new item
// starts unapproved and only shows on the feed once the admin approves it.
func (h *Handler) UploadPost(c *gin.Context) {
	file, header, err := c.Request.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No media file provided"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		respondError(c, media.ErrTooLarge)
		return
	}

	item, err := h.board.SubmitUpload(c.Request.Context(), board.UploadDraft{
		Title:   c.PostForm("title"),
		Caption: c.PostForm("caption"),
		Content: file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// CreatePoll accepts a poll submission. Needs at least two non-empty
// options; the question falls back to the title.
func (h *Handler) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.board.CreatePoll(c.Request.Context(), req.Title, req.Question, req.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// React bumps the laugh counter and returns the new count.
func (h *Handler) React(c *gin.Context) {
	laughs, err := h.board.React(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"laughs": laughs})
}

// Vote records one vote per viewer per poll. Repeat votes from the same
// viewer return the current state without counting again.
func (h *Handler) Vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, counted, err := h.board.Vote(c.Request.Context(), middleware.Viewer(c), c.Param("id"), *req.OptionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pollResponse(item, counted))
}

func pollResponse(item models.Item, counted bool) gin.H {
	return gin.H{
		"post":        item,
		"counted":     counted,
		"percentages": item.Poll.Percentages(),
	}
}
