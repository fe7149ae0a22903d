package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bizmarket/internal/middleware"
	"github.com/hitoshi/bizmarket/internal/model"
)

// writeInvalidRequestBody はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しい形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeListingNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeSeedListing, model.ErrCodeLogoURLBlocked:
		return http.StatusForbidden
	case model.ErrCodeInvalidListing, model.ErrCodeInvalidPrice, model.ErrCodeInvalidSignUp:
		return http.StatusBadRequest
	case model.ErrCodeLogoUploadFailed:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidCredentials, model.ErrCodeInvalidMagicLink, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateSignUp:
		return http.StatusConflict
	case model.ErrCodeInterestFailed:
		// 保存失敗の詳細はログのみ。利用者には再試行を促す汎用応答を返す。
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
