package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/noticeboard-api/internal/dto"
	"github.com/noah-isme/noticeboard-api/internal/middleware"
	"github.com/noah-isme/noticeboard-api/internal/models"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/response"
	"github.com/noah-isme/noticeboard-api/pkg/storage"
)

type noticeServiceMock struct {
	createReq    dto.NoticeRequest
	createAuthor string
	fileNames    []string
	fileBodies   []string
	updateID     int64
	listQuery    dto.NoticeListQuery
	err          error
	deleted      []int64
}

func (m *noticeServiceMock) Create(_ context.Context, req dto.NoticeRequest, files []storage.Upload, author string) (*dto.NoticeDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createReq = req
	m.createAuthor = author
	for _, f := range files {
		body, _ := io.ReadAll(f.Content)
		m.fileNames = append(m.fileNames, f.Filename)
		m.fileBodies = append(m.fileBodies, string(body))
	}
	return &dto.NoticeDetail{ID: 1, Title: req.Title, Author: author, AttachmentPaths: []string{}}, nil
}

func (m *noticeServiceMock) Update(_ context.Context, id int64, req dto.NoticeRequest, _ []storage.Upload) (*dto.NoticeDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updateID = id
	return &dto.NoticeDetail{ID: id, Title: req.Title, AttachmentPaths: []string{}}, nil
}

func (m *noticeServiceMock) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *noticeServiceMock) Get(_ context.Context, id int64) (*dto.NoticeDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.NoticeDetail{ID: id, ViewCount: 1, AttachmentPaths: []string{}}, nil
}

func (m *noticeServiceMock) List(_ context.Context, query dto.NoticeListQuery) (*dto.NoticePage, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.listQuery = query
	return &dto.NoticePage{Content: []dto.NoticeSummary{}, Page: query.Page, Size: query.Size}, nil
}

func (m *noticeServiceMock) Top(context.Context) ([]dto.NoticeSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.NoticeSummary{{ID: 1, ViewCount: 100}, {ID: 2, ViewCount: 80}}, nil
}

func newNoticeRouter(svc noticeService, claims *models.IdentityClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewNoticeHandler(svc)
	r := gin.New()
	auth := func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}
	r.GET("/api/notices", h.List)
	r.GET("/api/notices/top", h.Top)
	r.GET("/api/notices/:id", h.Get)
	r.POST("/api/notices", auth, h.Create)
	r.PUT("/api/notices/:id", auth, h.Update)
	r.DELETE("/api/notices/:id", auth, h.Delete)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNoticeHandlerCreateMultipart(t *testing.T) {
	svc := &noticeServiceMock{}
	r := newNoticeRouter(svc, &models.IdentityClaims{Username: "admin"})

	body, contentType := multipartBody(t, map[string]string{
		"title":         "Meeting",
		"content":       "We will have a meeting at 10 AM",
		"startDateTime": "2024-07-20T10:00:00",
		"endDateTime":   "2024-07-20T18:00:00Z",
	}, map[string]string{"agenda.pdf": "%PDF"})
	req := httptest.NewRequest(http.MethodPost, "/api/notices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", svc.createAuthor)
	assert.Equal(t, "Meeting", svc.createReq.Title)
	assert.True(t, svc.createReq.StartDateTime.Equal(time.Date(2024, 7, 20, 10, 0, 0, 0, time.Local)))
	assert.True(t, svc.createReq.EndDateTime.Equal(time.Date(2024, 7, 20, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"agenda.pdf"}, svc.fileNames)
	assert.Equal(t, []string{"%PDF"}, svc.fileBodies)

	var detail dto.NoticeDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.ID)
}

func TestNoticeHandlerCreateRequiresIdentity(t *testing.T) {
	svc := &noticeServiceMock{}
	r := newNoticeRouter(svc, nil)

	body, contentType := multipartBody(t, map[string]string{"title": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.createAuthor)
}

func TestNoticeHandlerCreateRejectsMalformedDate(t *testing.T) {
	r := newNoticeRouter(&noticeServiceMock{}, &models.IdentityClaims{Username: "admin"})

	body, contentType := multipartBody(t, map[string]string{
		"title":         "Meeting",
		"content":       "Body",
		"startDateTime": "tomorrow",
		"endDateTime":   "2024-07-20T18:00:00",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errBody.ErrorCode)
	require.Len(t, errBody.Violations, 1)
	assert.Equal(t, "startDateTime", errBody.Violations[0].Field)
}

func TestNoticeHandlerValidationErrorBody(t *testing.T) {
	svc := &noticeServiceMock{err: appErrors.Validation([]appErrors.Violation{
		{Field: "title", Message: "Title is required"},
		{Field: "content", Message: "Content is required"},
	})}
	r := newNoticeRouter(svc, &models.IdentityClaims{Username: "admin"})

	body, contentType := multipartBody(t, map[string]string{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "Title is required, Content is required", errBody.Message)
	assert.Len(t, errBody.Violations, 2)
	assert.False(t, errBody.Timestamp.IsZero())
}

func TestNoticeHandlerUpdate(t *testing.T) {
	svc := &noticeServiceMock{}
	r := newNoticeRouter(svc, &models.IdentityClaims{Username: "admin"})

	body, contentType := multipartBody(t, map[string]string{"title": "Updated"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/notices/12", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(12), svc.updateID)
}

func TestNoticeHandlerRejectsNonNumericID(t *testing.T) {
	r := newNoticeRouter(&noticeServiceMock{}, &models.IdentityClaims{Username: "admin"})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/api/notices/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, method)
	}
}

func TestNoticeHandlerDelete(t *testing.T) {
	svc := &noticeServiceMock{}
	r := newNoticeRouter(svc, &models.IdentityClaims{Username: "admin"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/notices/3", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{3}, svc.deleted)
}

func TestNoticeHandlerNotFound(t *testing.T) {
	svc := &noticeServiceMock{err: appErrors.Clone(appErrors.ErrNoticeNotFound, "Notice not found with id 9")}
	r := newNoticeRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notices/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "NOTICE_NOT_FOUND", errBody.ErrorCode)
	assert.Equal(t, "Notice not found with id 9", errBody.Message)
}

func TestNoticeHandlerListQuery(t *testing.T) {
	svc := &noticeServiceMock{}
	r := newNoticeRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notices?page=2&size=20&sort=viewCount,desc&sort=title", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.NoticeListQuery{Page: 2, Size: 20, Sort: []string{"viewCount,desc", "title"}}, svc.listQuery)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notices?page=first", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoticeHandlerTopRouteIsNotAnID(t *testing.T) {
	r := newNoticeRouter(&noticeServiceMock{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notices/top", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var top []dto.NoticeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.Len(t, top, 2)
	assert.Equal(t, 100, top[0].ViewCount)
}

func TestNoticeHandlerHidesInternalErrors(t *testing.T) {
	r := newNoticeRouter(&noticeServiceMock{err: io.ErrUnexpectedEOF}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notices/top", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errBody.ErrorCode)
	assert.NotContains(t, errBody.Message, "unexpected EOF")
}
