package postgres

import (
	"context"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	stmt := `
        INSERT INTO users (id, name, join_date, is_active, location)
        VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography)
        ON CONFLICT (id) DO NOTHING`

	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, user := range users {
			_, err := tx.Exec(ctx, stmt,
				user.ID,
				user.Name,
				user.JoinDate,
				user.IsActive,
				user.Location.Lon,
				user.Location.Lat,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) GetActive(ctx context.Context) ([]*models.User, error) {
	query := `
        SELECT
            id, name, join_date, is_active,
            COALESCE(ST_X(location::geometry), 0) AS longitude,
            COALESCE(ST_Y(location::geometry), 0) AS latitude
        FROM users
        WHERE is_active
        ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.JoinDate,
			&user.IsActive,
			&user.Location.Lon,
			&user.Location.Lat,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
