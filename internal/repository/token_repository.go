package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// TokenRepository persists the session allow-list. Only issuance ids present
// here are honored during verification; deleting a subject's rows is the
// revocation mechanism.
type TokenRepository interface {
	Insert(ctx context.Context, entry *domain.AllowListEntry) error
	ListActiveBySubject(ctx context.Context, subjectID int64) ([]string, error)
	DeleteAllBySubject(ctx context.Context, subjectID int64) error
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Insert(ctx context.Context, entry *domain.AllowListEntry) error {
	const query = `
        INSERT INTO auth_tokens (jti, uid, expires_at)
        VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, entry.IssuanceID, entry.SubjectID, entry.ExpiresAt)
	return err
}

// ListActiveBySubject returns the issuance ids that have not yet expired.
// Expired rows are treated as absent; they are cleaned up lazily rather than
// by a background reaper.
func (r *tokenRepository) ListActiveBySubject(ctx context.Context, subjectID int64) ([]string, error) {
	const query = `
        SELECT jti FROM auth_tokens WHERE uid=$1 AND expires_at > NOW()`

	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var jti string
		if err := rows.Scan(&jti); err != nil {
			return nil, err
		}
		ids = append(ids, jti)
	}
	return ids, rows.Err()
}

// DeleteAllBySubject removes every allow-list row for the subject in a
// single statement, so revocation is all-or-nothing.
func (r *tokenRepository) DeleteAllBySubject(ctx context.Context, subjectID int64) error {
	const query = `DELETE FROM auth_tokens WHERE uid=$1`

	_, err := r.pool.Exec(ctx, query, subjectID)
	return err
}
