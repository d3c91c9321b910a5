package model

import (
	"time"
)

/*

Group is a data model for a content-sharing group

Id: primary key, use to identify a group
CreatedAt: time when entity is created
Name: group's display name
OwnerID: user who created the group, manages membership
Private: whether affiliated private content is member-only
Members: users in the group, "many-to-many" relation. The owner counts
as a member for every membership check even when absent from this set
Contents: content items affiliated to this group

*/

type Group struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string
	OwnerID   string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Owner     *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Private   bool   `gorm:"default:false"`

	Members  []*User    `json:"members" gorm:"many2many:group_members;constraint:OnDelete:CASCADE;"`
	Contents []*Content `json:"contents" gorm:"foreignKey:GroupID"`
}

func (g *Group) IsOwner(userId string) bool { return g.OwnerID == userId }

// HasMember reports explicit or implicit membership. Owners are always
// members, removing the owner row from group_members never revokes it.
func (g *Group) HasMember(userId string) bool {
	if g.IsOwner(userId) {
		return true
	}
	for _, m := range g.Members {
		if m != nil && m.Id == userId {
			return true
		}
	}
	return false
}
