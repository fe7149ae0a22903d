// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, listing, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeListingNotFound     = "LISTING_NOT_FOUND"
	ErrCodeSeedListing         = "SEED_LISTING"
	ErrCodeInvalidListing      = "INVALID_LISTING"
	ErrCodeInvalidPrice        = "INVALID_PRICE"
	ErrCodeLogoUploadFailed    = "LOGO_UPLOAD_FAILED"
	ErrCodeLogoURLBlocked      = "LOGO_URL_BLOCKED"
	ErrCodeInterestFailed      = "INTEREST_FAILED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInvalidSignUp       = "INVALID_SIGN_UP"
	ErrCodeDuplicateSignUp     = "DUPLICATE_SIGN_UP"
	ErrCodeInvalidMagicLink    = "INVALID_MAGIC_LINK"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewListingNotFoundError は掲載未検出エラーを生成する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("指定された掲載が見つかりません: %s", listingID),
		Category: "listing",
		Action:   "掲載IDを確認してください。",
	}
}

// NewSeedListingError はシード掲載への書き込み操作を拒否するエラーを生成する。
func NewSeedListingError() *APIError {
	return &APIError{
		Code:     ErrCodeSeedListing,
		Message:  "この掲載はサンプルデータのため、購入意思表明の対象外です。",
		Category: "listing",
		Action:   "登録済みの掲載に対して操作してください。",
	}
}

// NewInvalidListingError は掲載フォームの検証エラーを生成する。
func NewInvalidListingError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidListing,
		Message:  fmt.Sprintf("掲載内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度送信してください。",
	}
}

// NewInvalidPriceError は価格の解析エラーを生成する。
func NewInvalidPriceError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPrice,
		Message:  fmt.Sprintf("価格を数値として解釈できません: %s", raw),
		Category: "validation",
		Action:   "価格は数値で入力してください。",
	}
}

// NewLogoUploadFailedError はロゴ画像の保存失敗エラーを生成する。
// 掲載の登録はロゴ保存が成功するまで実行されない。
func NewLogoUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeLogoUploadFailed,
		Message:  fmt.Sprintf("画像のアップロードに失敗しました: %s", reason),
		Category: "listing",
		Action:   "画像を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewLogoURLBlockedError はロゴURLがセキュリティポリシーでブロックされた場合のエラーを生成する。
func NewLogoURLBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeLogoURLBlocked,
		Message:  "セキュリティポリシーにより、指定された画像URLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトの画像URLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewInterestFailedError は購入意思表明の保存失敗エラーを生成する。
// 詳細はログのみに記録し、ユーザーには汎用メッセージを返す。
func NewInterestFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeInterestFailed,
		Message:  "購入意思表明の送信に失敗しました。",
		Category: "listing",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidSignUpError はサインアップ入力の検証エラーを生成する。
func NewInvalidSignUpError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignUp,
		Message:  fmt.Sprintf("登録内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度送信してください。",
	}
}

// NewDuplicateSignUpError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewDuplicateSignUpError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSignUp,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "サインインするか、別のメールアドレスで登録してください。",
	}
}

// NewInvalidMagicLinkError はワンタイムリンクの検証エラーを生成する。
func NewInvalidMagicLinkError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMagicLink,
		Message:  "ログインリンクが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "ログインリンクを再度リクエストしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
// 書き込み操作はセッションが確認できるまで実行されない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
