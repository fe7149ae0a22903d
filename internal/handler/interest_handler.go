package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizmarket/internal/middleware"
	"github.com/hitoshi/bizmarket/internal/model"
)

// InterestServiceInterface は購入意思表明ハンドラーが必要とするサービスインターフェース。
type InterestServiceInterface interface {
	// Record は買い手の購入意思表明を記録する。
	Record(ctx context.Context, buyerID, buyerEmail, listingID string) (*model.Interest, error)
	// ListByOwner は売り手が所有する掲載ごとの意思表明一覧を返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.ListingInterests, error)
}

// BuyerFinder は意思表明に記録する買い手情報を引くためのインターフェース。
// repository.UserRepositoryを直接変更せず、最小限のインターフェースとして定義する。
type BuyerFinder interface {
	// FindByID はユーザーIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// InterestHandler は購入意思表明のHTTPハンドラー。
type InterestHandler struct {
	service InterestServiceInterface
	buyers  BuyerFinder
}

// NewInterestHandler はInterestHandlerを生成する。
func NewInterestHandler(service InterestServiceInterface, buyers BuyerFinder) *InterestHandler {
	return &InterestHandler{
		service: service,
		buyers:  buyers,
	}
}

// interestResponse は購入意思表明のAPIレスポンス。
type interestResponse struct {
	ID         string `json:"id"`
	ListingID  string `json:"listing_id"`
	BuyerEmail string `json:"buyer_email"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// listingInterestsResponse は売り手向けビューの1行。
type listingInterestsResponse struct {
	Listing   listingResponse    `json:"listing"`
	Interests []interestResponse `json:"interests"`
}

// RecordInterest は掲載への購入意思表明を記録する。
// POST /api/listings/{id}/interest
func (h *InterestHandler) RecordInterest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	buyer, err := h.buyers.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if buyer == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listingID := chi.URLParam(r, "id")
	interest, err := h.service.Record(r.Context(), buyer.ID, buyer.Email, listingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toInterestResponse(interest))
}

// ListInterests は売り手が所有する掲載ごとの意思表明一覧を返す。
// GET /api/interests
func (h *InterestHandler) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	rows, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]listingInterestsResponse, 0, len(rows))
	for _, row := range rows {
		item := listingInterestsResponse{
			Listing:   toListingResponse(&row.Listing),
			Interests: make([]interestResponse, 0, len(row.Interests)),
		}
		for _, in := range row.Interests {
			item.Interests = append(item.Interests, toInterestResponse(&in))
		}
		resp = append(resp, item)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toInterestResponse はmodel.InterestからAPIレスポンスに変換する。
func toInterestResponse(in *model.Interest) interestResponse {
	resp := interestResponse{
		ID:         in.ID,
		ListingID:  in.ListingID,
		BuyerEmail: in.BuyerEmail,
	}
	if !in.CreatedAt.IsZero() {
		resp.CreatedAt = in.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
