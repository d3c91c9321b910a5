// Package access holds the pure permission predicates of the content
// core. Every function here is side-effect free over already-loaded
// models: callers preload the item's group (with members) and pass it
// in, nothing in this package touches the store.
package access

import (
	"github.com/memeboard/memeboard-backend/model"
)

// CanView reports whether actor may see item. group is the item's
// affiliated group with members preloaded, nil when the item has none.
//
// Deleted items are invisible to everyone on this path, including the
// owner and admins. The only way around it is the explicit admin-only
// listing, which bypasses this predicate entirely.
func CanView(actor *model.User, item *model.Content, group *model.Group) bool {
	if item == nil || item.IsDeleted() {
		return false
	}
	if !item.IsPrivate() {
		return true
	}
	if actor.IsAnonymous() {
		return false
	}
	if item.IsOwnedBy(actor.Id) {
		return true
	}
	return group != nil && group.HasMember(actor.Id)
}

// CanEdit reports whether actor may mutate item's fields. Anonymous
// content has no owner, so only admins can edit it.
func CanEdit(actor *model.User, item *model.Content) bool {
	if actor.IsAnonymous() || item == nil {
		return false
	}
	return item.IsOwnedBy(actor.Id) || actor.IsAdmin
}

// CanDelete gates the audited soft-delete path. Admin only: owners do
// not get to erase the record of their own uploads.
func CanDelete(actor *model.User, item *model.Content) bool {
	if item == nil {
		return false
	}
	return actor.Admin()
}

// CanManageGroup reports whether actor may change group membership or
// group settings.
func CanManageGroup(actor *model.User, group *model.Group) bool {
	if actor.IsAnonymous() || group == nil {
		return false
	}
	return group.IsOwner(actor.Id)
}
