// Package catalog はアプリに同梱されたシード掲載カタログを提供する。
// シード掲載は不変で、プロセス起動時に埋め込みJSONから1回だけ読み込まれる。
// ディレクトリサービスが利用できない場合のフォールバックとして使用される。
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hitoshi/bizmarket/internal/model"
)

//go:embed seed.json
var seedFS embed.FS

// seedEntry は埋め込みJSONの1エントリ。
type seedEntry struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Industry    string  `json:"industry"`
	Image       string  `json:"image"`
	Seller      string  `json:"seller"`
	Email       string  `json:"email"`
}

// Catalog は読み込み済みのシード掲載カタログ。
type Catalog struct {
	listings []*model.Listing
}

// Load は埋め込みJSONからシードカタログを読み込む。
func Load() (*Catalog, error) {
	data, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read seed catalog: %w", err)
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	listings := make([]*model.Listing, len(entries))
	for i, e := range entries {
		listings[i] = &model.Listing{
			ID:          strconv.Itoa(e.ID),
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Industry:    e.Industry,
			ImageURL:    e.Image,
			SellerName:  e.Seller,
			SellerEmail: e.Email,
			Source:      model.SourceSeed,
		}
	}

	return &Catalog{listings: listings}, nil
}

// Listings はシード掲載をカタログ順で返す。
// 呼び出し側の変更から守るためコピーを返す。
func (c *Catalog) Listings() []*model.Listing {
	out := make([]*model.Listing, len(c.listings))
	copy(out, c.listings)
	return out
}

// Len はシード掲載の件数を返す。
func (c *Catalog) Len() int {
	return len(c.listings)
}
