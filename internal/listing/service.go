package listing

import (
	"context"
	"log/slog"

	"github.com/hitoshi/bizmarket/internal/catalog"
	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/repository"
)

// BrowseMetrics は掲載閲覧のメトリクス記録のインターフェース。
// metrics.Collectorを抽象化してテスタビリティを向上させる。
type BrowseMetrics interface {
	// RecordCatalogRead はディレクトリ読み取りの実行を記録する。
	RecordCatalogRead()
	// RecordSeedFallback はディレクトリ障害によるシードカタログへの
	// フォールバックを記録する。
	RecordSeedFallback()
}

// BrowseOptions は掲載閲覧の絞り込み条件。
type BrowseOptions struct {
	// Query はフリーテキスト検索（名前・説明文への部分一致）。
	Query string
	// Industry は業種の完全一致フィルター。
	Industry string
	// CompleteOnly がtrueの場合、名前・説明文・業種が空、
	// または価格が0以下のディレクトリ掲載を除外する。
	// シード掲載には適用されない。
	CompleteOnly bool
}

// Service は掲載の集約・絞り込みサービス。
//
// 閲覧のたびにディレクトリ（DB）を1回読み取り、シードカタログの掲載を
// 先頭に、ディレクトリの掲載を後ろに連結して返す。ディレクトリの読み取りに
// 失敗した場合はシードカタログのみを返し、診断情報はログとメトリクスにのみ
// 記録する。閲覧者にエラーは表示されない。
type Service struct {
	companies repository.CompanyRepository
	catalog   *catalog.Catalog
	metrics   BrowseMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil許容（テスト時）。
func NewService(companies repository.CompanyRepository, cat *catalog.Catalog, metrics BrowseMetrics) *Service {
	return &Service{
		companies: companies,
		catalog:   cat,
		metrics:   metrics,
	}
}

// View は1回の閲覧で返す内容。絞り込み後の掲載一覧と、
// 絞り込みフォームの選択肢になる業種一覧（絞り込み前の全体から計算）。
type View struct {
	Listings   []*model.Listing
	Industries []string
}

// Browse は掲載一覧を取得して絞り込み条件を適用する。
// ディレクトリの読み取りは閲覧1回につき1回だけ行われ、
// 業種一覧も同じ読み取り結果から計算される。
// シードカタログが空でない限り、結果が空になるのは絞り込みによる場合のみ。
// エラーを返さない。ディレクトリ障害はフォールバックで吸収される。
func (s *Service) Browse(ctx context.Context, opts BrowseOptions) View {
	combined := s.aggregate(ctx, opts.CompleteOnly)
	return View{
		Listings:   Filter(combined, opts.Query, opts.Industry),
		Industries: Industries(combined),
	}
}

// aggregate はシードカタログとディレクトリの掲載を連結する。
func (s *Service) aggregate(ctx context.Context, completeOnly bool) []*model.Listing {
	seed := s.catalog.Listings()

	if s.metrics != nil {
		s.metrics.RecordCatalogRead()
	}

	remote, err := s.companies.ListAll(ctx)
	if err != nil {
		// ディレクトリ障害: シードのみで継続する
		slog.Warn("ディレクトリ読み取り失敗: シードカタログにフォールバック", "error", err)
		if s.metrics != nil {
			s.metrics.RecordSeedFallback()
		}
		return seed
	}

	combined := make([]*model.Listing, 0, len(seed)+len(remote))
	combined = append(combined, seed...)
	for _, l := range remote {
		if completeOnly && !isComplete(l) {
			continue
		}
		combined = append(combined, l)
	}
	return combined
}

// isComplete は掲載が表示に必要な項目をすべて持つかを判定する。
func isComplete(l *model.Listing) bool {
	return l.Name != "" && l.Description != "" && l.Industry != "" && l.Price > 0
}
