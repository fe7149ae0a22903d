package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizmarket/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	Metrics           middleware.HTTPStatusRecorder

	// 認証
	AuthService      AuthServiceInterface
	MagicLinkService MagicLinkServiceInterface
	AuthConfig       AuthHandlerConfig

	// 掲載
	ListingService      ListingServiceInterface
	RegistrationService RegistrationServiceInterface

	// 購入意思表明
	InterestService InterestServiceInterface
	BuyerFinder     BuyerFinder

	// ユーザー
	UserService UserServiceInterface

	// ロゴ画像の配信ディレクトリ
	LogoDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → CSRF
//
// 認証ルート（/auth/*）とヘルスチェック・ロゴ配信は
// セッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.MagicLinkService, deps.AuthConfig)
	listingHandler := NewListingHandler(deps.ListingService, deps.RegistrationService)
	interestHandler := NewInterestHandler(deps.InterestService, deps.BuyerFinder)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// CSRFトークンの取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/magic-link", authHandler.IssueMagicLink)
		r.Get("/callback", authHandler.MagicLinkCallback)

		// OAuthフロー
		r.Get("/google/login", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)

		// セッション管理
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// ロゴ画像の配信
	if deps.LogoDir != "" {
		fs := http.StripPrefix("/logos/", http.FileServer(http.Dir(deps.LogoDir)))
		r.Get("/logos/*", fs.ServeHTTP)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 掲載
		r.Route("/api/listings", func(r chi.Router) {
			r.Get("/", listingHandler.ListListings)

			// POST /api/listings - 掲載登録（登録専用レート制限を追加）
			r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/", listingHandler.RegisterListing)

			// POST /api/listings/{id}/interest - 購入意思表明
			r.Post("/{id}/interest", interestHandler.RecordInterest)
		})

		// 売り手向け: 自分の掲載に寄せられた意思表明の一覧
		r.Get("/api/interests", interestHandler.ListInterests)

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
