package model

import (
	"time"
)

/*

UserContentSeen is a "many-to-many" relation of user has seen a content.
Unlike saves and likes this relation is one-way, rows are inserted and
never removed.

UserID: user id
ContentID: content id
CreatedAt: time when relation is created

*/

type UserContentSeen struct {
	UserID    string `gorm:"primaryKey"`
	ContentID string `gorm:"primaryKey"`
	CreatedAt time.Time
}
