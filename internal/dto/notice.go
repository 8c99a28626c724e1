package dto

import (
	"time"

	"github.com/noah-isme/noticeboard-api/internal/models"
)

// NoticeRequest carries the fields shared by create and update.
type NoticeRequest struct {
	Title         string    `form:"title" json:"title" validate:"required,max=100"`
	Content       string    `form:"content" json:"content" validate:"required,max=1000"`
	StartDateTime time.Time `form:"-" json:"startDateTime"`
	EndDateTime   time.Time `form:"-" json:"endDateTime"`
}

// NoticeDetail is the single-notice view returned by the detail endpoint.
type NoticeDetail struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	StartDateTime   time.Time `json:"startDateTime"`
	EndDateTime     time.Time `json:"endDateTime"`
	AttachmentPaths []string  `json:"attachmentPaths"`
	CreatedDate     time.Time `json:"createdDate"`
	ViewCount       int       `json:"viewCount"`
	Author          string    `json:"author"`
}

// NoticeSummary is the list and ranking projection.
type NoticeSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedDate time.Time `json:"createdDate"`
	ViewCount   int       `json:"viewCount"`
	Author      string    `json:"author"`
}

// NoticePage is one page of summaries.
type NoticePage struct {
	Content       []NoticeSummary `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}

// NoticeListQuery is the parsed listing request.
type NoticeListQuery struct {
	Page int
	Size int
	Sort []string
}

// NewNoticeDetail projects a notice row.
func NewNoticeDetail(n models.Notice) NoticeDetail {
	paths := []string(n.AttachmentPaths)
	if paths == nil {
		paths = []string{}
	}
	return NoticeDetail{
		ID:              n.ID,
		Title:           n.Title,
		Content:         n.Content,
		StartDateTime:   n.StartDateTime,
		EndDateTime:     n.EndDateTime,
		AttachmentPaths: paths,
		CreatedDate:     n.CreatedDate,
		ViewCount:       n.ViewCount,
		Author:          n.Author,
	}
}

// NewNoticeSummary projects a notice row without attachments or the display window.
func NewNoticeSummary(n models.Notice) NoticeSummary {
	return NoticeSummary{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		CreatedDate: n.CreatedDate,
		ViewCount:   n.ViewCount,
		Author:      n.Author,
	}
}
