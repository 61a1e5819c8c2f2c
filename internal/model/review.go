package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewSentiment string

const (
	ReviewSentimentPositive ReviewSentiment = "positive"
	ReviewSentimentNeutral  ReviewSentiment = "neutral"
	ReviewSentimentNegative ReviewSentiment = "negative"
)

type Review struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	Comment       string          `db:"comment" json:"comment"`
	Sentiment     ReviewSentiment `db:"sentiment" json:"sentiment"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type CreateReviewRequest struct {
	Comment string `json:"comment" binding:"required"`
}
