// Package interest は購入意思表明のドメインロジックを提供する。
package interest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/repository"
)

// InterestMetrics は購入意思表明のメトリクス記録のインターフェース。
type InterestMetrics interface {
	// RecordInterest は意思表明の記録成功を記録する。
	RecordInterest()
}

// Service は購入意思表明サービス。
//
// 意思表明は承認フローを持たない単純な追記であり、重複の排除も行わない。
// 同じ買い手が同じ掲載に2回意思表明すれば2行になる。
type Service struct {
	companies repository.CompanyRepository
	interests repository.InterestRepository
	metrics   InterestMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil許容（テスト時）。
func NewService(companies repository.CompanyRepository, interests repository.InterestRepository, metrics InterestMetrics) *Service {
	return &Service{
		companies: companies,
		interests: interests,
		metrics:   metrics,
	}
}

// Record は指定掲載への購入意思表明を記録する。
//
// シード掲載は出自タグで判定して拒否する。意思表明の宛先になる売り手が
// 存在しないため、レコードを作っても意味を持たない。
// 保存失敗の詳細はログにのみ記録し、呼び出し側には汎用エラーを返す。
func (s *Service) Record(ctx context.Context, buyerID, buyerEmail, listingID string) (*model.Interest, error) {
	listing, err := s.companies.FindByID(ctx, listingID)
	if err != nil {
		slog.Error("意思表明: 掲載の取得に失敗", "listingID", listingID, "error", err)
		return nil, model.NewInterestFailedError()
	}
	if listing == nil {
		// ディレクトリに存在しない掲載はシード掲載または未知のID
		return nil, model.NewSeedListingError()
	}
	if !listing.InterestEligible() {
		return nil, model.NewSeedListingError()
	}

	interest := &model.Interest{
		ID:         uuid.New().String(),
		ListingID:  listing.ID,
		BuyerID:    buyerID,
		BuyerEmail: buyerEmail,
	}

	if err := s.interests.Create(ctx, interest); err != nil {
		slog.Error("意思表明: 保存に失敗", "listingID", listingID, "buyerID", buyerID, "error", err)
		return nil, model.NewInterestFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordInterest()
	}

	slog.Info("意思表明を記録", "listingID", listingID, "buyerID", buyerID)
	return interest, nil
}

// ListByOwner は売り手が所有する掲載と、各掲載への意思表明の一覧を返す。
// 意思表明のない掲載も空の一覧付きで含まれる。
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*model.ListingInterests, error) {
	listings, err := s.companies.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner listings: %w", err)
	}
	if len(listings) == 0 {
		return []*model.ListingInterests{}, nil
	}

	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	interests, err := s.interests.ListByCompanyIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}

	byListing := make(map[string][]model.Interest)
	for _, in := range interests {
		byListing[in.ListingID] = append(byListing[in.ListingID], *in)
	}

	result := make([]*model.ListingInterests, len(listings))
	for i, l := range listings {
		rows := byListing[l.ID]
		if rows == nil {
			rows = []model.Interest{}
		}
		result[i] = &model.ListingInterests{
			Listing:   *l,
			Interests: rows,
		}
	}
	return result, nil
}
