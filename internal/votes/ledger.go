// Package votes implements the append-only vote ledger and its
// aggregation. A cast is one SQL statement that inserts the vote event
// and counts the target's full event history in the same atomic unit, so
// the returned tally always includes the vote just recorded and never
// races a concurrent cast on the same target. Counts are derived every
// time; no stored counter exists anywhere.
package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Vote directions. The validation gate guarantees handlers never pass
// anything else.
const (
	Up   = 1
	Down = -1
)

// ErrTargetNotFound reports that the vote's target does not exist. The
// vote event row may still have been written by then: the insert carries
// no integrity dependency on the target, and orphaned rows are tolerated
// as harmless dead weight rather than prevented with an extra existence
// check.
var ErrTargetNotFound = errors.New("vote target not found")

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// QuestionTally is a question's fields joined with its freshly computed
// vote totals. It is a view over the ledger, not a stored entity.
type QuestionTally struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AuthorID    int       `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Upvotes     int       `json:"upvote"`
	Downvotes   int       `json:"downvote"`
}

// AnswerTally is the answer-side view, same rules as QuestionTally.
type AnswerTally struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	QuestionID int       `json:"question_id"`
	AuthorID   int       `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Upvotes    int       `json:"upvote"`
	Downvotes  int       `json:"downvote"`
}

// The cast statements fuse the event insert with the aggregation. A
// data-modifying CTE in Postgres cannot see its own row from the outer
// SELECT, so the tally is the table as of statement start UNION ALL the
// inserted row; concurrent casts each count at least themselves plus
// whatever had committed when their statement took its snapshot. The
// INSERT runs to completion even when the target join comes back empty,
// which is what tolerates orphaned vote rows.
const castQuestionVoteSQL = `
WITH new_vote AS (
    INSERT INTO question_votes (question_id, direction, created_at, updated_at)
    VALUES (?, ?, NOW(), NOW())
    RETURNING question_id, direction
), tally AS (
    SELECT question_id, direction FROM question_votes WHERE question_id = ?
    UNION ALL
    SELECT question_id, direction FROM new_vote
)
SELECT q.id, q.title, q.description, q.category, q.author_id,
       q.created_at, q.updated_at,
       COUNT(*) FILTER (WHERE t.direction = 1)  AS upvotes,
       COUNT(*) FILTER (WHERE t.direction = -1) AS downvotes
FROM questions q
JOIN tally t ON t.question_id = q.id
WHERE q.id = ?
GROUP BY q.id`

const castAnswerVoteSQL = `
WITH new_vote AS (
    INSERT INTO answer_votes (answer_id, direction, created_at, updated_at)
    VALUES (?, ?, NOW(), NOW())
    RETURNING answer_id, direction
), tally AS (
    SELECT answer_id, direction FROM answer_votes WHERE answer_id = ?
    UNION ALL
    SELECT answer_id, direction FROM new_vote
)
SELECT a.id, a.content, a.question_id, a.author_id,
       a.created_at, a.updated_at,
       COUNT(*) FILTER (WHERE t.direction = 1)  AS upvotes,
       COUNT(*) FILTER (WHERE t.direction = -1) AS downvotes
FROM answers a
JOIN tally t ON t.answer_id = a.id
WHERE a.id = ?
GROUP BY a.id`

// CastQuestionVote appends one vote event for the question and returns
// the question joined with its recomputed totals, the new vote included.
// Returns ErrTargetNotFound when no such question exists and a wrapped
// storage error when the statement cannot be executed.
func (l *Ledger) CastQuestionVote(ctx context.Context, questionID, direction int) (QuestionTally, error) {
	var tally QuestionTally
	result := l.db.WithContext(ctx).
		Raw(castQuestionVoteSQL, questionID, direction, questionID, questionID).
		Scan(&tally)
	if result.Error != nil {
		return QuestionTally{}, fmt.Errorf("casting question vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return QuestionTally{}, ErrTargetNotFound
	}
	return tally, nil
}

// CastAnswerVote is CastQuestionVote for answers.
func (l *Ledger) CastAnswerVote(ctx context.Context, answerID, direction int) (AnswerTally, error) {
	var tally AnswerTally
	result := l.db.WithContext(ctx).
		Raw(castAnswerVoteSQL, answerID, direction, answerID, answerID).
		Scan(&tally)
	if result.Error != nil {
		return AnswerTally{}, fmt.Errorf("casting answer vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return AnswerTally{}, ErrTargetNotFound
	}
	return tally, nil
}

// CountQuestionVotes recomputes a question's totals without writing
// anything. Read paths use this; only casts go through the fused
// statement.
func (l *Ledger) CountQuestionVotes(questionID int) (upvotes, downvotes int) {
	var up, down int64
	l.db.Table("question_votes").Where("question_id = ? AND direction = ?", questionID, Up).Count(&up)
	l.db.Table("question_votes").Where("question_id = ? AND direction = ?", questionID, Down).Count(&down)
	return int(up), int(down)
}

// CountAnswerVotes recomputes an answer's totals without writing anything.
func (l *Ledger) CountAnswerVotes(answerID int) (upvotes, downvotes int) {
	var up, down int64
	l.db.Table("answer_votes").Where("answer_id = ? AND direction = ?", answerID, Up).Count(&up)
	l.db.Table("answer_votes").Where("answer_id = ? AND direction = ?", answerID, Down).Count(&down)
	return int(up), int(down)
}
