package model

import (
	"time"
)

/*

User is a data model for a memeboard user

Id: primary key, use to identify a user
CreatedAt: time when entity is created

Name: display name of a user, can be changed, don't need to be unique
Email: user's email, unique at the identity boundary
IsAdmin: elevated privilege flag, gates audited deletion
ProfileImage: stored path of the user's profile picture

Contents: content items this user posted, "has-many" relation
SavedContents: contents this user saved, "many-to-many" relation
LikedContents: contents this user liked, "many-to-many" relation
SeenContents: contents this user has seen, "many-to-many" relation

*/

type User struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	Name         string
	Email        string
	IsAdmin      bool   `gorm:"default:false"`
	ProfileImage string `gorm:"default:'default.jpg'"`

	Contents      []*Content `json:"contents" gorm:"foreignKey:OwnerID"`
	SavedContents []*Content `json:"saved_contents" gorm:"many2many:user_content_saves;"`
	LikedContents []*Content `json:"liked_contents" gorm:"many2many:user_content_likes;"`
	SeenContents  []*Content `json:"seen_contents" gorm:"many2many:user_content_seens;"`
}

func (u *User) GetID() string { return u.Id }

// Actor is the identity a core operation runs as. A nil *User is the
// anonymous actor, so every helper below must be nil-safe.
func (u *User) IsAnonymous() bool { return u == nil }

func (u *User) Admin() bool { return u != nil && u.IsAdmin }
