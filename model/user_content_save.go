package model

import (
	"time"
)

/*

UserContentSave is a "many-to-many" relation of user saves a content

UserID: user id
ContentID: content id
CreatedAt: time when relation is created

*/

type UserContentSave struct {
	UserID    string `gorm:"primaryKey"`
	ContentID string `gorm:"primaryKey"`
	CreatedAt time.Time
}
