package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const suggestionColumns = `
    id, user_id, pattern_id, suggested_items, total_amount, suggested_time,
    reason, confidence, status, expires_at, user_response, responded_at, created_at
`

type SuggestionRepository struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepository(pool *pgxpool.Pool) *SuggestionRepository {
	return &SuggestionRepository{pool: pool}
}

// Create relies on the partial unique index over PENDING rows.
func (r *SuggestionRepository) Create(ctx context.Context, s *models.AutoOrderSuggestion) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO auto_order_suggestions (`+suggestionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `,
		s.ID,
		s.UserID,
		s.PatternID,
		suggestedItems(s.SuggestedItems),
		s.TotalAmount,
		s.SuggestedTime,
		s.Reason,
		s.Confidence,
		string(s.Status),
		s.ExpiresAt,
		s.UserResponse,
		s.RespondedAt,
		s.CreatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrPendingExists
	}
	return err
}

func (r *SuggestionRepository) Get(ctx context.Context, id string) (*models.AutoOrderSuggestion, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+suggestionColumns+" FROM auto_order_suggestions WHERE id = $1", id)
	s, err := scanSuggestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("suggestion", id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SuggestionRepository) Update(ctx context.Context, s *models.AutoOrderSuggestion, expected models.SuggestionStatus) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE auto_order_suggestions SET
            suggested_items = $2,
            total_amount = $3,
            status = $4,
            user_response = $5,
            responded_at = $6
        WHERE id = $1 AND status = $7
    `,
		s.ID,
		suggestedItems(s.SuggestedItems),
		s.TotalAmount,
		string(s.Status),
		s.UserResponse,
		s.RespondedAt,
		string(expected),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	current, err := r.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	return &models.TransitionError{Entity: "suggestion", ID: s.ID, From: string(current.Status), To: string(s.Status)}
}

func (r *SuggestionRepository) PendingForUser(ctx context.Context, userID string) (*models.AutoOrderSuggestion, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+suggestionColumns+" FROM auto_order_suggestions WHERE user_id = $1 AND status = $2",
		userID, string(models.SuggestionPending))
	s, err := scanSuggestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *SuggestionRepository) ExpireBefore(ctx context.Context, userID string, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE auto_order_suggestions SET status = $1
        WHERE status = $2 AND expires_at <= $3 AND ($4::text = '' OR user_id = $4)
    `, string(models.SuggestionExpired), string(models.SuggestionPending), now, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *SuggestionRepository) List(ctx context.Context, userID string, status *models.SuggestionStatus, limit int) ([]models.AutoOrderSuggestion, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+suggestionColumns+`
        FROM auto_order_suggestions
        WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
        ORDER BY created_at DESC, id DESC
        LIMIT $3
    `, userID, statusArg, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AutoOrderSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SuggestionRepository) CountByStatus(ctx context.Context, userID string) (map[models.SuggestionStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT status, COUNT(*)
        FROM auto_order_suggestions
        WHERE $1::text = '' OR user_id = $1
        GROUP BY status
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.SuggestionStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.SuggestionStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanSuggestion(row pgx.Row) (*models.AutoOrderSuggestion, error) {
	var s models.AutoOrderSuggestion
	var status string
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PatternID,
		&s.SuggestedItems,
		&s.TotalAmount,
		&s.SuggestedTime,
		&s.Reason,
		&s.Confidence,
		&status,
		&s.ExpiresAt,
		&s.UserResponse,
		&s.RespondedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = models.SuggestionStatus(status)
	return &s, nil
}

func suggestedItems(items []models.SuggestedItem) []models.SuggestedItem {
	if items == nil {
		return []models.SuggestedItem{}
	}
	return items
}
