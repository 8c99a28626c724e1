package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/noticeboard-api/internal/dto"
	"github.com/noah-isme/noticeboard-api/internal/models"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/noticeboard-api/pkg/storage"
)

const (
	// TopNoticesCacheKey is the single cache entry holding the ranking.
	TopNoticesCacheKey = "topNotices"
	// TopNoticesLimit is the size of the ranking.
	TopNoticesLimit = 5

	defaultPageSize = 10
	maxPageSize     = 100
)

// sortFields maps the API sort names to notice columns.
var sortFields = map[string]string{
	"id":            "id",
	"title":         "title",
	"content":       "content",
	"createdDate":   "created_date",
	"viewCount":     "view_count",
	"author":        "author",
	"startDateTime": "start_date_time",
	"endDateTime":   "end_date_time",
}

var violationMessages = map[string]map[string]string{
	"title": {
		"required": "Title is required",
		"max":      "Title can be up to 100 characters long",
	},
	"content": {
		"required": "Content is required",
		"max":      "Content can be up to 1000 characters long",
	},
}

type noticeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Notice, error)
	Create(ctx context.Context, notice *models.Notice) error
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id int64) error
	IncrementViewCount(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
	Top(ctx context.Context, limit int) ([]models.Notice, error)
}

type attachmentStore interface {
	Store(upload storage.Upload) (string, error)
}

// NoticeServiceConfig holds tunables for the notice workflows.
type NoticeServiceConfig struct {
	TopNoticesTTL time.Duration
	MaxFiles      int
	Now           func() time.Time
}

// NoticeService owns the notice lifecycle: validation, attachments,
// persistence, view counting and the cached top notices ranking.
type NoticeService struct {
	repo      noticeRepository
	store     attachmentStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       NoticeServiceConfig
}

// NewNoticeService constructs the service. cache and metrics may be nil.
func NewNoticeService(repo noticeRepository, store attachmentStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg NoticeServiceConfig) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &NoticeService{
		repo:      repo,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates and stores a new notice authored by author.
func (s *NoticeService) Create(ctx context.Context, req dto.NoticeRequest, files []storage.Upload, author string) (*dto.NoticeDetail, error) {
	violations := s.validate(req, files)
	if strings.TrimSpace(author) == "" {
		violations = append(violations, appErrors.Violation{Field: "author", Message: "Author is required"})
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	paths, err := s.storeAttachments(ctx, req.Title, files)
	if err != nil {
		return nil, err
	}

	notice := &models.Notice{
		Title:           req.Title,
		Content:         req.Content,
		StartDateTime:   req.StartDateTime,
		EndDateTime:     req.EndDateTime,
		AttachmentPaths: paths,
		CreatedDate:     s.cfg.Now(),
		ViewCount:       0,
		Author:          author,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		s.loggerFor(ctx).Error("create notice failed", zap.String("title", req.Title), zap.Error(err))
		return nil, appErrors.CloneWrap(appErrors.ErrNoticeCreationFailed, err, "")
	}

	s.cache.Invalidate(ctx, TopNoticesCacheKey)
	s.metrics.RecordNoticeMutation("create")
	detail := dto.NewNoticeDetail(*notice)
	return &detail, nil
}

// Update replaces the editable fields of notice id. The attachment set is
// replaced by the files of this call. id, createdDate, author and viewCount
// are kept from the stored row.
func (s *NoticeService) Update(ctx context.Context, id int64, req dto.NoticeRequest, files []storage.Upload) (*dto.NoticeDetail, error) {
	if violations := s.validate(req, files); len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, id, err, appErrors.ErrNoticeUpdateFailed)
	}

	paths, err := s.storeAttachments(ctx, req.Title, files)
	if err != nil {
		return nil, err
	}

	existing.Title = req.Title
	existing.Content = req.Content
	existing.StartDateTime = req.StartDateTime
	existing.EndDateTime = req.EndDateTime
	existing.AttachmentPaths = paths
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.lookupError(ctx, id, err, appErrors.ErrNoticeUpdateFailed)
	}

	s.cache.Invalidate(ctx, TopNoticesCacheKey)
	s.metrics.RecordNoticeMutation("update")
	detail := dto.NewNoticeDetail(*existing)
	return &detail, nil
}

// Delete permanently removes notice id. Stored attachments are left on disk.
func (s *NoticeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(ctx, id, err, appErrors.ErrNoticeDeletionFailed)
	}
	s.cache.Invalidate(ctx, TopNoticesCacheKey)
	s.metrics.RecordNoticeMutation("delete")
	return nil
}

// Get returns notice id and counts the view. The returned view count
// includes the increment made by this call.
func (s *NoticeService) Get(ctx context.Context, id int64) (*dto.NoticeDetail, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, id, err, appErrors.ErrInternal)
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return nil, s.lookupError(ctx, id, err, appErrors.ErrInternal)
	}
	s.cache.Invalidate(ctx, TopNoticesCacheKey)
	s.metrics.RecordNoticeView()

	notice.ViewCount++
	detail := dto.NewNoticeDetail(*notice)
	return &detail, nil
}

// List returns one zero-based page of notice summaries.
func (s *NoticeService) List(ctx context.Context, query dto.NoticeListQuery) (*dto.NoticePage, error) {
	order, err := parseSort(query.Sort)
	if err != nil {
		return nil, err
	}
	page := query.Page
	if page < 0 {
		page = 0
	}
	size := query.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	rows, total, err := s.repo.List(ctx, models.NoticeFilter{Page: page, PageSize: size, Sort: order})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}

	content := make([]dto.NoticeSummary, 0, len(rows))
	for _, row := range rows {
		content = append(content, dto.NewNoticeSummary(row))
	}
	return &dto.NoticePage{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// Top returns the most viewed notices, highest first, served from cache
// until the next mutation.
func (s *NoticeService) Top(ctx context.Context) ([]dto.NoticeSummary, error) {
	var result []dto.NoticeSummary
	err := s.cache.GetOrCompute(ctx, TopNoticesCacheKey, &result, s.cfg.TopNoticesTTL, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.Top(ctx, TopNoticesLimit)
		if err != nil {
			return nil, err
		}
		summaries := make([]dto.NoticeSummary, 0, len(rows))
		for _, row := range rows {
			summaries = append(summaries, dto.NewNoticeSummary(row))
		}
		return summaries, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load top notices")
	}
	if result == nil {
		result = []dto.NoticeSummary{}
	}
	return result, nil
}

func (s *NoticeService) validate(req dto.NoticeRequest, files []storage.Upload) []appErrors.Violation {
	var violations []appErrors.Violation
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []appErrors.Violation{{Field: "request", Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			violations = append(violations, toViolation(fe))
		}
	}
	if req.Title != "" && strings.TrimSpace(req.Title) == "" {
		violations = append(violations, appErrors.Violation{Field: "title", Message: violationMessages["title"]["required"]})
	}
	if req.Content != "" && strings.TrimSpace(req.Content) == "" {
		violations = append(violations, appErrors.Violation{Field: "content", Message: violationMessages["content"]["required"]})
	}

	switch {
	case req.StartDateTime.IsZero():
		violations = append(violations, appErrors.Violation{Field: "startDateTime", Message: "Start date and time is required"})
	case !req.EndDateTime.IsZero() && req.StartDateTime.After(req.EndDateTime):
		violations = append(violations, appErrors.Violation{Field: "startDateTime", Message: "Start date and time must not be after end date and time"})
	}
	switch {
	case req.EndDateTime.IsZero():
		violations = append(violations, appErrors.Violation{Field: "endDateTime", Message: "End date and time is required"})
	case !req.EndDateTime.After(s.cfg.Now()):
		violations = append(violations, appErrors.Violation{Field: "endDateTime", Message: "End date and time must be in the future"})
	}

	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		violations = append(violations, appErrors.Violation{Field: "files", Message: fmt.Sprintf("At most %d files can be attached", s.cfg.MaxFiles)})
	}
	return violations
}

func toViolation(fe validator.FieldError) appErrors.Violation {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	if msg, ok := violationMessages[field][fe.Tag()]; ok {
		return appErrors.Violation{Field: field, Message: msg}
	}
	return appErrors.Violation{Field: field, Message: fmt.Sprintf("%s failed on %s", field, fe.Tag())}
}

func (s *NoticeService) storeAttachments(ctx context.Context, title string, files []storage.Upload) (pq.StringArray, error) {
	paths := make(pq.StringArray, 0, len(files))
	for _, file := range files {
		path, err := s.store.Store(file)
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Code == appErrors.ErrInternal.Code {
				appErr = appErrors.CloneWrap(appErrors.ErrAttachmentWrite, err, "")
			}
			s.metrics.RecordAttachment(appErr.Code)
			s.loggerFor(ctx).Warn("attachment rejected",
				zap.String("title", title),
				zap.String("file", file.Filename),
				zap.String("code", appErr.Code),
				zap.Error(err))
			return nil, appErr
		}
		s.metrics.RecordAttachment("")
		paths = append(paths, path)
	}
	return paths, nil
}

// lookupError maps a repository error for notice id: a missing row becomes
// NOTICE_NOT_FOUND, anything else the given failure.
func (s *NoticeService) lookupError(ctx context.Context, id int64, err error, failure *appErrors.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNoticeNotFound, fmt.Sprintf("Notice not found with id %d", id))
	}
	s.loggerFor(ctx).Error("notice persistence failed", zap.Int64("id", id), zap.String("code", failure.Code), zap.Error(err))
	return appErrors.CloneWrap(failure, err, "")
}

func (s *NoticeService) loggerFor(ctx context.Context) *zap.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

// parseSort reads Spring style sort parameters: "field", "field,dir" or
// "a,b,dir" where dir applies to every listed field.
func parseSort(params []string) ([]models.SortOrder, error) {
	var order []models.SortOrder
	var violations []appErrors.Violation
	for _, param := range params {
		tokens := strings.Split(param, ",")
		dir := models.SortAsc
		if last := strings.ToLower(strings.TrimSpace(tokens[len(tokens)-1])); last == "asc" || last == "desc" {
			if last == "desc" {
				dir = models.SortDesc
			}
			tokens = tokens[:len(tokens)-1]
		}
		for _, token := range tokens {
			field := strings.TrimSpace(token)
			if field == "" {
				continue
			}
			column, ok := sortFields[field]
			if !ok {
				violations = append(violations, appErrors.Violation{Field: "sort", Message: fmt.Sprintf("Unsupported sort property %q", field)})
				continue
			}
			order = append(order, models.SortOrder{Column: column, Direction: dir})
		}
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}
	if len(order) == 0 {
		order = []models.SortOrder{{Column: "created_date", Direction: models.SortDesc}}
	}
	return order, nil
}
