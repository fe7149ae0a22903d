package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizmarket/internal/model"
)

// PostgresMagicLinkRepo はPostgreSQLを使用したワンタイムリンクトークンリポジトリ。
type PostgresMagicLinkRepo struct {
	db *sql.DB
}

// NewPostgresMagicLinkRepo はPostgresMagicLinkRepoを生成する。
func NewPostgresMagicLinkRepo(db *sql.DB) *PostgresMagicLinkRepo {
	return &PostgresMagicLinkRepo{db: db}
}

// Create はトークンを作成する。
func (r *PostgresMagicLinkRepo) Create(ctx context.Context, token *model.MagicLinkToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO magic_link_tokens (token, email, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.Token, token.Email, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create magic link token: %w", err)
	}
	return nil
}

// Consume はトークンを原子的に消費して返す。
// UPDATE ... RETURNING により、並行リクエストでも1回だけ成功する。
// 期限切れ・消費済み・未知のトークンの場合はnilを返す。
func (r *PostgresMagicLinkRepo) Consume(ctx context.Context, token string) (*model.MagicLinkToken, error) {
	result := &model.MagicLinkToken{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE magic_link_tokens
		 SET consumed_at = now()
		 WHERE token = $1 AND consumed_at IS NULL AND expires_at > now()
		 RETURNING token, email, expires_at, consumed_at, created_at`,
		token,
	).Scan(&result.Token, &result.Email, &result.ExpiresAt, &result.ConsumedAt, &result.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume magic link token: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ MagicLinkRepository = (*PostgresMagicLinkRepo)(nil)
