// Package model はドメインモデルを定義する。
package model

import "time"

// ListingSource は掲載情報の出自を表すタグ。
// シード由来か登録済み（DB由来）かで購入意思表明の可否が決まる。
type ListingSource string

const (
	// SourceSeed はアプリに同梱されたシードカタログ由来の掲載を表す。
	// 所有者を持たず、購入意思表明の対象にならない。
	SourceSeed ListingSource = "seed"
	// SourceRemote はディレクトリサービス（DB）に登録された掲載を表す。
	// 所有者を持ち、購入意思表明の対象になる。
	SourceRemote ListingSource = "remote"
)

// Listing は売りに出されている事業の掲載情報を表す。
//
// 不変条件: Source == SourceSeed のとき OwnerID は空、
// Source == SourceRemote のとき OwnerID は必ず設定される。
// 中間状態は存在しない。
type Listing struct {
	ID          string
	Name        string
	Description string // サニタイズ済みHTML
	Price       float64
	Industry    string
	ImageURL    string
	SellerName  string
	SellerEmail string
	Source      ListingSource
	OwnerID     string // SourceRemoteの場合のみ設定される
	CreatedAt   time.Time
}

// InterestEligible は購入意思表明の対象になれるかを返す。
// シード掲載は対象外（出自タグによる型レベルの判定）。
func (l *Listing) InterestEligible() bool {
	return l.Source == SourceRemote && l.OwnerID != ""
}
