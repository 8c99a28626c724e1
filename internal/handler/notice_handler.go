package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/noticeboard-api/internal/dto"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/response"
	"github.com/noah-isme/noticeboard-api/pkg/storage"
)

// localDateTimeLayout is the zone-less ISO form sent by the web client.
const localDateTimeLayout = "2006-01-02T15:04:05"

type noticeService interface {
	Create(ctx context.Context, req dto.NoticeRequest, files []storage.Upload, author string) (*dto.NoticeDetail, error)
	Update(ctx context.Context, id int64, req dto.NoticeRequest, files []storage.Upload) (*dto.NoticeDetail, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*dto.NoticeDetail, error)
	List(ctx context.Context, query dto.NoticeListQuery) (*dto.NoticePage, error)
	Top(ctx context.Context) ([]dto.NoticeSummary, error)
}

// NoticeHandler exposes the notice board endpoints.
type NoticeHandler struct {
	service noticeService
}

// NewNoticeHandler builds a new handler.
func NewNoticeHandler(service noticeService) *NoticeHandler {
	return &NoticeHandler{service: service}
}

// Create godoc
// @Summary Create notice
// @Tags Notices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title (max 100 characters)"
// @Param content formData string true "Content (max 1000 characters)"
// @Param startDateTime formData string true "Display start, ISO-8601"
// @Param endDateTime formData string true "Display end, ISO-8601, must be in the future"
// @Param files formData file false "Attachments"
// @Success 200 {object} dto.NoticeDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims.Name() == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req, err := bindNoticeRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	files, closeFiles, err := openUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFiles()

	notice, err := h.service.Create(c.Request.Context(), req, files, claims.Name())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notice)
}

// Update godoc
// @Summary Update notice
// @Description Replaces title, content, display window and the attachment set.
// @Tags Notices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Param title formData string true "Title (max 100 characters)"
// @Param content formData string true "Content (max 1000 characters)"
// @Param startDateTime formData string true "Display start, ISO-8601"
// @Param endDateTime formData string true "Display end, ISO-8601, must be in the future"
// @Param files formData file false "Attachments"
// @Success 200 {object} dto.NoticeDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	id, err := parseNoticeID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := bindNoticeRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	files, closeFiles, err := openUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFiles()

	notice, err := h.service.Update(c.Request.Context(), id, req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notice)
}

// Delete godoc
// @Summary Delete notice
// @Tags Notices
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 204
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	id, err := parseNoticeID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get notice
// @Description Returns the notice and counts the view.
// @Tags Notices
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.NoticeDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /notices/{id} [get]
func (h *NoticeHandler) Get(c *gin.Context) {
	id, err := parseNoticeID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	notice, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notice)
}

// List godoc
// @Summary List notices
// @Tags Notices
// @Produce json
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (default 10, max 100)"
// @Param sort query []string false "field,direction; repeatable" collectionFormat(multi)
// @Success 200 {object} dto.NoticePage
// @Failure 400 {object} response.ErrorBody
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	var query dto.NoticeListQuery
	var violations []appErrors.Violation
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, appErrors.Violation{Field: "page", Message: "page must be a number"})
		}
		query.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, appErrors.Violation{Field: "size", Message: "size must be a number"})
		}
		query.Size = size
	}
	if len(violations) > 0 {
		response.Error(c, appErrors.Validation(violations))
		return
	}
	query.Sort = c.QueryArray("sort")

	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// Top godoc
// @Summary Most viewed notices
// @Tags Notices
// @Produce json
// @Success 200 {array} dto.NoticeSummary
// @Router /notices/top [get]
func (h *NoticeHandler) Top(c *gin.Context) {
	notices, err := h.service.Top(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notices)
}

func parseNoticeID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Validation([]appErrors.Violation{{Field: "id", Message: "Notice id must be a positive number"}})
	}
	return id, nil
}

func bindNoticeRequest(c *gin.Context) (dto.NoticeRequest, error) {
	req := dto.NoticeRequest{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}
	var violations []appErrors.Violation
	var err error
	if req.StartDateTime, err = parseDateTime(c.PostForm("startDateTime")); err != nil {
		violations = append(violations, appErrors.Violation{Field: "startDateTime", Message: "Start date and time must be an ISO-8601 date time"})
	}
	if req.EndDateTime, err = parseDateTime(c.PostForm("endDateTime")); err != nil {
		violations = append(violations, appErrors.Violation{Field: "endDateTime", Message: "End date and time must be an ISO-8601 date time"})
	}
	if len(violations) > 0 {
		return req, appErrors.Validation(violations)
	}
	return req, nil
}

// parseDateTime accepts RFC 3339 or a zone-less local date time. An empty
// value yields the zero time so the service reports it as missing.
func parseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(localDateTimeLayout, raw, time.Local)
}

// openUploads opens every part named "files". The returned func closes them.
func openUploads(c *gin.Context) ([]storage.Upload, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload")
	}

	headers := form.File["files"]
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	uploads := make([]storage.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, noop, appErrors.CloneWrap(appErrors.ErrAttachmentWrite, err, "failed to read uploaded file")
		}
		opened = append(opened, file)
		uploads = append(uploads, storage.Upload{Filename: header.Filename, Size: header.Size, Content: file})
	}
	return uploads, closeAll, nil
}
