// Package model はドメインモデルを定義する。
package model

import "time"

// Interest は買い手から掲載への購入意思表明を表す。
// 承認・却下のような状態遷移は持たない単純な記録。
// 同一の買い手が同一掲載に複数回意思表明した場合、レコードも複数作られる。
type Interest struct {
	ID         string
	ListingID  string // SourceRemoteの掲載ID
	BuyerID    string
	BuyerEmail string
	CreatedAt  time.Time // DBのnow()で採番される
}

// ListingInterests は売り手向けビューの1行を表す。
// 売り手が所有する掲載と、そこに寄せられた意思表明の一覧。
type ListingInterests struct {
	Listing   Listing
	Interests []Interest
}
