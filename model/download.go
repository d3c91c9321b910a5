package model

import (
	"time"
)

/*

Download records one successful fetch of an item's stored bytes

Id: random uuid
ContentID: content whose bytes were served
UserID: user who fetched them, nil for anonymous downloads
DownloadDate: time of the fetch

One row is appended per download, the table is never updated in place.

*/

type Download struct {
	Id           string `gorm:"primaryKey"`
	ContentID    string
	UserID       *string
	DownloadDate time.Time
}
