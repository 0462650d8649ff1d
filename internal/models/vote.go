package models

import "time"

// QuestionVote is one immutable vote event against a question. Rows are
// only ever inserted; totals are counted from the table, never stored.
// QuestionID is a plain column on purpose: the ledger has no integrity
// dependency on the question existing (see the vote ledger).
type QuestionVote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	QuestionID int       `gorm:"index" json:"question_id"`
	Direction  int       `json:"direction"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AnswerVote is the answer-side vote event, same rules as QuestionVote.
type AnswerVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	AnswerID  int       `gorm:"index" json:"answer_id"`
	Direction int       `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
