package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/noticeboard-api/internal/models"
)

const noticeColumns = `id, title, content, start_date_time, end_date_time, attachment_paths, created_date, view_count, author`

var sortableNoticeColumns = map[string]struct{}{
	"id":              {},
	"title":           {},
	"content":         {},
	"created_date":    {},
	"view_count":      {},
	"author":          {},
	"start_date_time": {},
	"end_date_time":   {},
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// NoticeRepository provides persistence for notices.
type NoticeRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewNoticeRepository creates the repository. metrics may be nil.
func NewNoticeRepository(db *sqlx.DB, metrics queryObserver) *NoticeRepository {
	return &NoticeRepository{db: db, metrics: metrics}
}

func (r *NoticeRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// GetByID returns a notice or sql.ErrNoRows.
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	defer r.observe("notice_get", time.Now())
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1`
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		return nil, err
	}
	return &notice, nil
}

// Create inserts a notice and sets its store-assigned id.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	defer r.observe("notice_create", time.Now())
	if notice.AttachmentPaths == nil {
		notice.AttachmentPaths = pq.StringArray{}
	}
	const query = `INSERT INTO notices (title, content, start_date_time, end_date_time, attachment_paths, created_date, view_count, author)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		notice.Title,
		notice.Content,
		notice.StartDateTime,
		notice.EndDateTime,
		notice.AttachmentPaths,
		notice.CreatedDate,
		notice.ViewCount,
		notice.Author,
	).Scan(&notice.ID)
	if err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns. created_date, author and view_count are
// never touched here. Returns sql.ErrNoRows when the row is gone.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	defer r.observe("notice_update", time.Now())
	if notice.AttachmentPaths == nil {
		notice.AttachmentPaths = pq.StringArray{}
	}
	const query = `UPDATE notices SET title = :title, content = :content, start_date_time = :start_date_time,
end_date_time = :end_date_time, attachment_paths = :attachment_paths
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, notice)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return expectAffected(res, "update notice")
}

// Delete removes a notice. Returns sql.ErrNoRows when nothing was deleted.
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	defer r.observe("notice_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM notices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return expectAffected(res, "delete notice")
}

// IncrementViewCount adds one to the stored counter in a single statement so
// concurrent viewers never lose an increment.
func (r *NoticeRepository) IncrementViewCount(ctx context.Context, id int64) error {
	defer r.observe("notice_increment_view", time.Now())
	res, err := r.db.ExecContext(ctx, "UPDATE notices SET view_count = view_count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("increment notice view count: %w", err)
	}
	return expectAffected(res, "increment notice view count")
}

// List returns one page of notices and the total row count.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	defer r.observe("notice_list", time.Now())
	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}
	orderBy, err := buildOrderBy(filter.Sort)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM notices ORDER BY %s LIMIT %d OFFSET %d`, noticeColumns, orderBy, size, page*size)
	notices := []models.Notice{}
	if err := r.db.SelectContext(ctx, &notices, query); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notices"); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}
	return notices, total, nil
}

// Top returns up to limit notices by view count, ties broken by id ascending.
func (r *NoticeRepository) Top(ctx context.Context, limit int) ([]models.Notice, error) {
	defer r.observe("notice_top", time.Now())
	query := `SELECT ` + noticeColumns + ` FROM notices ORDER BY view_count DESC, id ASC LIMIT $1`
	notices := []models.Notice{}
	if err := r.db.SelectContext(ctx, &notices, query, limit); err != nil {
		return nil, fmt.Errorf("top notices: %w", err)
	}
	return notices, nil
}

func buildOrderBy(sort []models.SortOrder) (string, error) {
	if len(sort) == 0 {
		sort = []models.SortOrder{{Column: "created_date", Direction: models.SortDesc}}
	}
	parts := make([]string, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		if _, ok := sortableNoticeColumns[s.Column]; !ok {
			return "", fmt.Errorf("unsupported sort column %q", s.Column)
		}
		dir := models.SortAsc
		if strings.EqualFold(string(s.Direction), string(models.SortDesc)) {
			dir = models.SortDesc
		}
		if s.Column == "id" {
			hasID = true
		}
		parts = append(parts, s.Column+" "+string(dir))
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", "), nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
