package models

import "time"

type Answer struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:varchar(300);not null" json:"content"`
	QuestionID int       `json:"question_id"`
	AuthorID   int       `json:"author_id"`
	User       User      `gorm:"foreignKey:AuthorID" json:"user"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Content string `json:"content"`
}
