package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hailamdev/qa-board/backend/internal/models"
	"github.com/hailamdev/qa-board/backend/internal/validation"
	"github.com/hailamdev/qa-board/backend/internal/votes"
)

type AnswerHandler struct {
	db     *gorm.DB
	ledger *votes.Ledger
}

func NewAnswerHandler(db *gorm.DB, ledger *votes.Ledger) *AnswerHandler {
	return &AnswerHandler{db: db, ledger: ledger}
}

// GetAnswers returns all answers for a question with calculated votes
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID := c.Param("id")

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	var answers []models.Answer
	if err := h.db.Where("question_id = ?", question.ID).Preload("User").Order("created_at desc").Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch answers"})
		return
	}

	var responses []gin.H
	for _, answer := range answers {
		up, down := h.ledger.CountAnswerVotes(answer.ID)
		responses = append(responses, gin.H{
			"id":          answer.ID,
			"content":     answer.Content,
			"question_id": answer.QuestionID,
			"author_id":   answer.AuthorID,
			"user":        answer.User,
			"upvote":      up,
			"downvote":    down,
			"created_at":  answer.CreatedAt,
			"updated_at":  answer.UpdatedAt,
		})
	}

	if responses == nil {
		responses = []gin.H{}
	}

	c.JSON(http.StatusOK, responses)
}

// CreateAnswer creates a new answer on a question
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := validation.AnswerContent(input.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	questionID := c.Param("id")
	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	answer := models.Answer{
		Content:    input.Content,
		QuestionID: question.ID,
		AuthorID:   authorID,
	}

	if err := h.db.Create(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create answer"})
		return
	}

	h.db.Preload("User").First(&answer, answer.ID)
	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer updates an answer (owner only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	answerID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := validation.AnswerContent(input.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own answers"})
		return
	}

	answer.Content = input.Content
	if err := h.db.Save(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update answer"})
		return
	}
	h.db.Preload("User").First(&answer, answer.ID)

	up, down := h.ledger.CountAnswerVotes(answer.ID)
	c.JSON(http.StatusOK, gin.H{
		"id":          answer.ID,
		"content":     answer.Content,
		"question_id": answer.QuestionID,
		"author_id":   answer.AuthorID,
		"user":        answer.User,
		"upvote":      up,
		"downvote":    down,
		"created_at":  answer.CreatedAt,
		"updated_at":  answer.UpdatedAt,
	})
}

// DeleteAnswer deletes an answer and its votes (owner only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own answers"})
		return
	}

	// Clean up votes on this answer too
	h.db.Where("answer_id = ?", answer.ID).Delete(&models.AnswerVote{})

	if err := h.db.Delete(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}
