package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizmarket/internal/model"
)

// PostgresCompanyRepo はPostgreSQLを使用した掲載リポジトリ。
type PostgresCompanyRepo struct {
	db *sql.DB
}

// NewPostgresCompanyRepo はPostgresCompanyRepoを生成する。
func NewPostgresCompanyRepo(db *sql.DB) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{db: db}
}

const companyColumns = `id, name, description, price, industry, image_url, seller_name, seller_email, user_id, created_at`

// ListAll は全掲載を登録順（created_at昇順）で取得する。
func (r *PostgresCompanyRepo) ListAll(ctx context.Context) ([]*model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// ListByOwner は指定ユーザーが所有する掲載を登録順で取得する。
func (r *PostgresCompanyRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1 ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies by owner: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
func (r *PostgresCompanyRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	listing := &model.Listing{Source: model.SourceRemote}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	).Scan(
		&listing.ID, &listing.Name, &listing.Description, &listing.Price,
		&listing.Industry, &listing.ImageURL, &listing.SellerName,
		&listing.SellerEmail, &listing.OwnerID, &listing.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company by ID: %w", err)
	}

	return listing, nil
}

// Create は掲載を作成する。
func (r *PostgresCompanyRepo) Create(ctx context.Context, listing *model.Listing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, description, price, industry, image_url, seller_name, seller_email, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		listing.ID, listing.Name, listing.Description, listing.Price,
		listing.Industry, listing.ImageURL, listing.SellerName,
		listing.SellerEmail, listing.OwnerID, listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}
	return nil
}

// scanListings は掲載のクエリ結果をスキャンする。
// DB由来の掲載はすべてSourceRemoteになる。
func scanListings(rows *sql.Rows) ([]*model.Listing, error) {
	var listings []*model.Listing
	for rows.Next() {
		listing := &model.Listing{Source: model.SourceRemote}
		if err := rows.Scan(
			&listing.ID, &listing.Name, &listing.Description, &listing.Price,
			&listing.Industry, &listing.ImageURL, &listing.SellerName,
			&listing.SellerEmail, &listing.OwnerID, &listing.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate company rows: %w", err)
	}
	return listings, nil
}

// compile-time interface check
var _ CompanyRepository = (*PostgresCompanyRepo)(nil)
