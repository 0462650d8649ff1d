package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hailamdev/qa-board/backend/internal/models"
	"github.com/hailamdev/qa-board/backend/internal/validation"
	"github.com/hailamdev/qa-board/backend/internal/votes"
)

type QuestionHandler struct {
	db     *gorm.DB
	ledger *votes.Ledger
}

func NewQuestionHandler(db *gorm.DB, ledger *votes.Ledger) *QuestionHandler {
	return &QuestionHandler{db: db, ledger: ledger}
}

// GetQuestions lists questions, optionally filtered by title/category.
// Any other query parameter is rejected before the database is touched.
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	if err := validation.QuestionListQuery(c.Request.URL.Query()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	query := h.db.Preload("User").Order("created_at desc")
	if title := c.Query("title"); title != "" {
		query = query.Where("title ILIKE ?", "%"+title+"%")
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch questions"})
		return
	}

	// DON'T embed models.Question — build each response manually
	var responses []gin.H
	for _, question := range questions {
		up, down := h.ledger.CountQuestionVotes(question.ID)
		responses = append(responses, gin.H{
			"id":          question.ID,
			"title":       question.Title,
			"description": question.Description,
			"category":    question.Category,
			"author_id":   question.AuthorID,
			"user":        question.User,
			"upvote":      up,
			"downvote":    down,
			"created_at":  question.CreatedAt,
			"updated_at":  question.UpdatedAt,
		})
	}

	// If no questions, return empty array not null
	if responses == nil {
		responses = []gin.H{}
	}

	c.JSON(http.StatusOK, responses)
}

// GetQuestion returns a single question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.Param("id")
	var question models.Question

	if err := h.db.Preload("User").First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	up, down := h.ledger.CountQuestionVotes(question.ID)

	c.JSON(http.StatusOK, gin.H{
		"id":          question.ID,
		"title":       question.Title,
		"description": question.Description,
		"category":    question.Category,
		"author_id":   question.AuthorID,
		"user":        question.User,
		"upvote":      up,
		"downvote":    down,
		"created_at":  question.CreatedAt,
		"updated_at":  question.UpdatedAt,
	})
}

// CreateQuestion creates a new question (PROTECTED - requires authentication)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := validation.QuestionPayload(input.Title, input.Description, input.Category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	question := models.Question{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		AuthorID:    authorID,
	}

	if err := h.db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create question"})
		return
	}

	h.db.Preload("User").First(&question, question.ID)

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates title/description/category (PROTECTED - requires ownership)
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	if question.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own questions"})
		return
	}

	if input.Title != "" {
		question.Title = input.Title
	}
	if input.Description != "" {
		question.Description = input.Description
	}
	if input.Category != "" {
		question.Category = input.Category
	}

	if err := h.db.Save(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update question"})
		return
	}
	h.db.Preload("User").First(&question, question.ID)

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question, its answers and every related vote
// (PROTECTED - requires ownership)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	if question.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own questions"})
		return
	}

	// Clean up answers and votes hanging off this question
	answerIDs := h.db.Model(&models.Answer{}).Select("id").Where("question_id = ?", question.ID)
	h.db.Where("answer_id IN (?)", answerIDs).Delete(&models.AnswerVote{})
	h.db.Where("question_id = ?", question.ID).Delete(&models.Answer{})
	h.db.Where("question_id = ?", question.ID).Delete(&models.QuestionVote{})

	if err := h.db.Delete(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
