package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hailamdev/qa-board/backend/internal/validation"
	"github.com/hailamdev/qa-board/backend/internal/votes"
)

// VoteHandler routes vote casts into the ledger. The endpoint fixes the
// direction; the body only confirms it. Every accepted cast is one
// append-only event — no toggling, no per-voter dedup.
type VoteHandler struct {
	ledger *votes.Ledger
}

func NewVoteHandler(ledger *votes.Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

func (h *VoteHandler) UpvoteQuestion(c *gin.Context) {
	h.castQuestionVote(c, votes.Up)
}

func (h *VoteHandler) DownvoteQuestion(c *gin.Context) {
	h.castQuestionVote(c, votes.Down)
}

func (h *VoteHandler) UpvoteAnswer(c *gin.Context) {
	h.castAnswerVote(c, votes.Up)
}

func (h *VoteHandler) DownvoteAnswer(c *gin.Context) {
	h.castAnswerVote(c, votes.Down)
}

func (h *VoteHandler) castQuestionVote(c *gin.Context, direction int) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	if _, ok := bindVotePayload(c, direction); !ok {
		return
	}

	tally, err := h.ledger.CastQuestionVote(c.Request.Context(), questionID, direction)
	if errors.Is(err, votes.ErrTargetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Vote recorded",
		"questionVote": tally,
	})
}

func (h *VoteHandler) castAnswerVote(c *gin.Context, direction int) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	if _, ok := bindVotePayload(c, direction); !ok {
		return
	}

	tally, err := h.ledger.CastAnswerVote(c.Request.Context(), answerID, direction)
	if errors.Is(err, votes.ErrTargetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Vote recorded",
		"answerVote": tally,
	})
}

// bindVotePayload decodes and validates the vote body. On rejection it
// writes the 400 itself and reports false; no ledger write has happened.
func bindVotePayload(c *gin.Context, direction int) (validation.VotePayload, bool) {
	var payload validation.VotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return payload, false
	}
	if err := validation.Direction(payload, direction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return payload, false
	}
	return payload, true
}
