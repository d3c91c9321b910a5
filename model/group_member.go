package model

import (
	"time"
)

/*

GroupMember is a "many-to-many" relation of user belongs to a group

UserID: user id
GroupID: group id
CreatedAt: time when relation is created

*/

type GroupMember struct {
	UserID    string `gorm:"primaryKey"`
	GroupID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
