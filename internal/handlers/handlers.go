package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hailamdev/qa-board/backend/internal/database"
	"github.com/hailamdev/qa-board/backend/internal/votes"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Vote     *VoteHandler
}

// NewHandler creates a unified handler with all sub-handlers sharing the
// one storage handle.
func NewHandler(db database.Service) *Handler {
	gormDB := db.GetDB()
	ledger := votes.NewLedger(gormDB)

	return &Handler{
		Auth:     NewAuthHandler(gormDB),
		Question: NewQuestionHandler(gormDB, ledger),
		Answer:   NewAnswerHandler(gormDB, ledger),
		Vote:     NewVoteHandler(ledger),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
