// Package listing は掲載の集約・絞り込みのドメインロジックを提供する。
package listing

import (
	"sort"
	"strings"

	"github.com/hitoshi/bizmarket/internal/model"
)

// Filter は掲載一覧をフリーテキストと業種で絞り込む。
// フリーテキストは名前または説明文への大文字小文字を区別しない部分一致、
// 業種は完全一致。空のクエリ・空の業種はすべてにマッチする。
// 両条件はANDで適用され、入力順序は保持される。
// 副作用を持たない純粋関数であり、同一条件の再適用は結果を変えない。
func Filter(listings []*model.Listing, query, industry string) []*model.Listing {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]*model.Listing, 0, len(listings))
	for _, l := range listings {
		if industry != "" && l.Industry != industry {
			continue
		}
		if q != "" && !matchesQuery(l, q) {
			continue
		}
		result = append(result, l)
	}
	return result
}

// matchesQuery は掲載の名前または説明文がクエリに部分一致するかを判定する。
func matchesQuery(l *model.Listing, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(l.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(l.Description), lowerQuery)
}

// Industries は掲載一覧に含まれる業種の重複なし一覧をソートして返す。
// 業種フィルターの選択肢の構築に使用する。空の業種は含めない。
func Industries(listings []*model.Listing) []string {
	seen := make(map[string]struct{})
	var industries []string
	for _, l := range listings {
		if l.Industry == "" {
			continue
		}
		if _, ok := seen[l.Industry]; ok {
			continue
		}
		seen[l.Industry] = struct{}{}
		industries = append(industries, l.Industry)
	}
	sort.Strings(industries)
	return industries
}
