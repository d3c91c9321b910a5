package model

import (
	"time"
)

/*

Deletion is the immutable audit record of a soft-delete

ContentID: content that was soft-deleted
DeletedBy: admin user who performed the deletion
DeletionDate: time of the deletion
Reason: optional free-text reason

Exactly one record is created per soft-delete and it is never updated
or removed afterwards. The admin gate is enforced by the access
evaluator before this record is created, not by the record itself.

*/

type Deletion struct {
	ContentID    string    `gorm:"primaryKey"`
	DeletedBy    string    `gorm:"primaryKey"`
	DeletionDate time.Time `gorm:"primaryKey"`
	Reason       string
}
