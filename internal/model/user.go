package model

import "time"

// User represents a registered account. Emails are stored lower-cased so the
// unique index is effectively case-insensitive; usernames match exactly.
type User struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Email             string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username          string     `json:"username" gorm:"uniqueIndex;size:30;not null"`
	PasswordHash      string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FavoriteDriverIDs StringList `json:"favoriteDriverIds" gorm:"column:favorite_driver_ids;type:json"`
	FavoriteTeamIDs   StringList `json:"favoriteTeamIds" gorm:"column:favorite_team_ids;type:json"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
