package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/bizmarket/internal/model"
)

// PostgresInterestRepo はPostgreSQLを使用した購入意思表明リポジトリ。
type PostgresInterestRepo struct {
	db *sql.DB
}

// NewPostgresInterestRepo はPostgresInterestRepoを生成する。
func NewPostgresInterestRepo(db *sql.DB) *PostgresInterestRepo {
	return &PostgresInterestRepo{db: db}
}

// Create は購入意思表明を作成する。
// created_atはDBのnow()で採番される。
func (r *PostgresInterestRepo) Create(ctx context.Context, interest *model.Interest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interests (id, company_id, buyer_id, buyer_email)
		 VALUES ($1, $2, $3, $4)`,
		interest.ID, interest.ListingID, interest.BuyerID, interest.BuyerEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interest: %w", err)
	}
	return nil
}

// ListByCompanyIDs は指定された掲載群への意思表明を作成順で取得する。
func (r *PostgresInterestRepo) ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]*model.Interest, error) {
	if len(companyIDs) == 0 {
		return []*model.Interest{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, buyer_id, buyer_email, created_at
		 FROM interests
		 WHERE company_id = ANY($1)
		 ORDER BY created_at ASC`,
		pq.Array(companyIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	defer rows.Close()

	var interests []*model.Interest
	for rows.Next() {
		interest := &model.Interest{}
		if err := rows.Scan(
			&interest.ID, &interest.ListingID, &interest.BuyerID,
			&interest.BuyerEmail, &interest.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interest row: %w", err)
		}
		interests = append(interests, interest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interest rows: %w", err)
	}
	return interests, nil
}

// compile-time interface check
var _ InterestRepository = (*PostgresInterestRepo)(nil)
