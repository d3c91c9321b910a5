package model

import (
	"time"
)

/*

UserContentLike is a "many-to-many" relation of user likes a content

UserID: user id
ContentID: content id
CreatedAt: time when relation is created

*/

type UserContentLike struct {
	UserID    string `gorm:"primaryKey"`
	ContentID string `gorm:"primaryKey"`
	CreatedAt time.Time
}
