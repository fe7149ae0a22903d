// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/bizmarket/internal/model"
)

// CompanyRepository は掲載（会社）データの永続化インターフェース。
// 返される掲載はすべてSourceRemoteとして扱われる。
type CompanyRepository interface {
	// ListAll は全掲載を登録順（created_at昇順）で取得する。
	ListAll(ctx context.Context) ([]*model.Listing, error)

	// ListByOwner は指定ユーザーが所有する掲載を登録順で取得する。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)

	// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Listing, error)

	// Create は掲載を作成する。
	Create(ctx context.Context, listing *model.Listing) error
}

// InterestRepository は購入意思表明の永続化インターフェース。
type InterestRepository interface {
	// Create は購入意思表明を作成する。
	// 重複チェックは行わない。同一買い手の再表明も新規レコードになる。
	Create(ctx context.Context, interest *model.Interest) error

	// ListByCompanyIDs は指定された掲載群への意思表明を取得する。
	// companyIDsが空の場合は空スライスを返す。
	ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]*model.Interest, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// CreateWithCredential はユーザーとパスワード資格情報を同一トランザクションで作成する。
	CreateWithCredential(ctx context.Context, user *model.User, cred *model.Credential) error

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するcredentials、identities、sessions、companies、interestsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// CredentialRepository はパスワード資格情報の永続化インターフェース。
type CredentialRepository interface {
	// FindByUserID は指定ユーザーの資格情報を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Credential, error)
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// MagicLinkRepository はワンタイムリンクトークンの永続化インターフェース。
type MagicLinkRepository interface {
	// Create はトークンを作成する。
	Create(ctx context.Context, token *model.MagicLinkToken) error

	// Consume はトークンを原子的に消費して返す。
	// 期限切れ・消費済み・未知のトークンの場合はnilを返す。
	Consume(ctx context.Context, token string) (*model.MagicLinkToken, error)
}
