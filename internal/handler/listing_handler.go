package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/bizmarket/internal/listing"
	"github.com/hitoshi/bizmarket/internal/middleware"
	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/registration"
)

// maxMultipartMemory はマルチパートフォーム解析時にメモリに保持する最大バイト数。
const maxMultipartMemory = 10 << 20 // 10MB

// ListingServiceInterface は掲載閲覧ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	// Browse はフィルタ条件に合致する掲載一覧と業種一覧を返す。
	// ディレクトリの読み取りは閲覧1回につき1回だけ行われる。
	Browse(ctx context.Context, opts listing.BrowseOptions) listing.View
}

// RegistrationServiceInterface は掲載登録ハンドラーが必要とするサービスインターフェース。
type RegistrationServiceInterface interface {
	// Submit は掲載を登録する。
	Submit(ctx context.Context, userID string, form registration.Form) (*model.Listing, error)
}

// ListingHandler は掲載の閲覧・登録のHTTPハンドラー。
type ListingHandler struct {
	service      ListingServiceInterface
	registration RegistrationServiceInterface
}

// NewListingHandler はListingHandlerを生成する。
func NewListingHandler(service ListingServiceInterface, reg RegistrationServiceInterface) *ListingHandler {
	return &ListingHandler{
		service:      service,
		registration: reg,
	}
}

// listingResponse は掲載情報のAPIレスポンス。
type listingResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Industry    string  `json:"industry"`
	ImageURL    string  `json:"image_url"`
	SellerName  string  `json:"seller_name"`
	SellerEmail string  `json:"seller_email"`
	Source      string  `json:"source"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// listListingsResponse は掲載一覧のAPIレスポンス。
// 業種の絞り込みUI用に、フィルタ前の全業種一覧を同梱する。
type listListingsResponse struct {
	Listings   []listingResponse `json:"listings"`
	Industries []string          `json:"industries"`
}

// ListListings は掲載一覧を返す。
// クエリパラメータ q（フリーテキスト）と industry（業種の完全一致）で絞り込む。
// GET /api/listings?q=xxx&industry=yyy
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	opts := listing.BrowseOptions{
		Query:    r.URL.Query().Get("q"),
		Industry: r.URL.Query().Get("industry"),
	}

	view := h.service.Browse(r.Context(), opts)

	resp := listListingsResponse{
		Listings:   make([]listingResponse, 0, len(view.Listings)),
		Industries: view.Industries,
	}
	for _, l := range view.Listings {
		resp.Listings = append(resp.Listings, toListingResponse(l))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RegisterListing は掲載登録を処理する。
// マルチパートフォームを受け取り、ロゴはファイル（logoフィールド）または
// 画像URL（logo_urlフィールド）のどちらか一方で指定できる。
// POST /api/listings
func (h *ListingHandler) RegisterListing(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	form := registration.Form{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		PriceRaw:    r.FormValue("price"),
		Industry:    r.FormValue("industry"),
		SellerName:  r.FormValue("seller_name"),
		SellerEmail: r.FormValue("seller_email"),
		LogoURL:     r.FormValue("logo_url"),
	}

	if file, header, fileErr := r.FormFile("logo"); fileErr == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			writeInvalidRequestBody(w)
			return
		}
		form.LogoData = data
		form.LogoFilename = header.Filename
	}

	created, err := h.registration.Submit(r.Context(), userID, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toListingResponse(created))
}

// toListingResponse はmodel.ListingからAPIレスポンスに変換する。
func toListingResponse(l *model.Listing) listingResponse {
	resp := listingResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Price:       l.Price,
		Industry:    l.Industry,
		ImageURL:    l.ImageURL,
		SellerName:  l.SellerName,
		SellerEmail: l.SellerEmail,
		Source:      string(l.Source),
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
