package types

import (
	"time"

	"github.com/google/uuid"
)

// Polarity is the signal a user recorded on a movie. A (user, movie) pair
// holds at most one preference row, so a like overwrites a dislike and
// vice versa.
type Polarity string

const (
	PolarityLiked    Polarity = "liked"
	PolarityDisliked Polarity = "disliked"
)

type Preference struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_preference_user_movie;column:user_id" json:"user_id"`
	TMDBID    int       `gorm:"not null;uniqueIndex:idx_preference_user_movie;column:tmdb_id" json:"tmdb_id"`
	Polarity  Polarity  `gorm:"not null;column:polarity" json:"polarity"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Preference) TableName() string {
	return "preference"
}
