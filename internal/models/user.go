package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the persisted mirror of a signed-in identity, keyed by email.
type User struct {
	ID         uuid.UUID `json:"userId" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email" bson:"email"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	TargetLang string    `json:"target_lang" bson:"target_lang"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
