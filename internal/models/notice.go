package models

import (
	"time"

	"github.com/lib/pq"
)

// Notice represents a persisted notice row.
type Notice struct {
	ID              int64          `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Content         string         `db:"content" json:"content"`
	StartDateTime   time.Time      `db:"start_date_time" json:"startDateTime"`
	EndDateTime     time.Time      `db:"end_date_time" json:"endDateTime"`
	AttachmentPaths pq.StringArray `db:"attachment_paths" json:"attachmentPaths"`
	CreatedDate     time.Time      `db:"created_date" json:"createdDate"`
	ViewCount       int            `db:"view_count" json:"viewCount"`
	Author          string         `db:"author" json:"author"`
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortOrder orders a listing by one column.
type SortOrder struct {
	Column    string
	Direction SortDirection
}

// NoticeFilter drives paged listing. Page is zero-based.
type NoticeFilter struct {
	Page     int
	PageSize int
	Sort     []SortOrder
}
