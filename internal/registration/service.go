// Package registration は掲載登録のドメインロジックを提供する。
package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizmarket/internal/listing"
	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/repository"
	"github.com/hitoshi/bizmarket/internal/security"
	"github.com/hitoshi/bizmarket/internal/storage"
)

// RegistrationMetrics は掲載登録のメトリクス記録のインターフェース。
type RegistrationMetrics interface {
	// RecordListingRegistered は掲載登録の成功を記録する。
	RecordListingRegistered()
	// RecordLogoUpload はロゴ保存の結果を記録する。
	RecordLogoUpload(success bool)
}

// Form は掲載登録フォームの入力値。
// ロゴはファイルアップロード（LogoData + LogoFilename）または
// 画像URL（LogoURL）のどちらか一方で指定する。両方未指定も許容される。
type Form struct {
	Name        string
	Description string
	PriceRaw    string
	Industry    string
	SellerName  string
	SellerEmail string

	LogoData     []byte
	LogoFilename string
	LogoURL      string
}

// Service は掲載登録サービス。
//
// ロゴの保存は掲載の挿入より先に行われ、保存に失敗した場合は
// 挿入を試みずに中断する。挿入に失敗した場合は保存済みロゴを
// 削除してから失敗を返す（孤児オブジェクトを残さない）。
type Service struct {
	companies repository.CompanyRepository
	sanitizer security.ContentSanitizerService
	store     storage.LogoStore
	resolver  listing.LogoResolverService
	metrics   RegistrationMetrics
	onCreated func(*model.Listing)
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// resolver・metrics・onCreatedはnil許容。
func NewService(
	companies repository.CompanyRepository,
	sanitizer security.ContentSanitizerService,
	store storage.LogoStore,
	resolver listing.LogoResolverService,
	metrics RegistrationMetrics,
	onCreated func(*model.Listing),
) *Service {
	return &Service{
		companies: companies,
		sanitizer: sanitizer,
		store:     store,
		resolver:  resolver,
		metrics:   metrics,
		onCreated: onCreated,
		now:       time.Now,
	}
}

// Submit は掲載を登録する。
// 1. フォームの検証（必須項目・価格の数値解釈）
// 2. 説明文HTMLのサニタイズ
// 3. ロゴの保存（ファイルまたはURL解決）と公開URLの確定
// 4. 掲載の挿入（所有者 = 認証済みユーザー）
// 5. 登録完了コールバックの呼び出し
func (s *Service) Submit(ctx context.Context, userID string, form Form) (*model.Listing, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	if err := validateForm(form); err != nil {
		return nil, err
	}

	price, err := parsePrice(form.PriceRaw)
	if err != nil {
		return nil, err
	}

	description := s.sanitizer.Sanitize(form.Description)

	imageURL, objectName, err := s.storeLogo(ctx, form)
	if err != nil {
		// ロゴ保存失敗: 挿入は試みない
		return nil, err
	}

	l := &model.Listing{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(form.Name),
		Description: description,
		Price:       price,
		Industry:    strings.TrimSpace(form.Industry),
		ImageURL:    imageURL,
		SellerName:  strings.TrimSpace(form.SellerName),
		SellerEmail: strings.TrimSpace(form.SellerEmail),
		Source:      model.SourceRemote,
		OwnerID:     userID,
		CreatedAt:   s.now(),
	}

	if err := s.companies.Create(ctx, l); err != nil {
		// 補償削除: 挿入に失敗した掲載のロゴを残さない
		if objectName != "" {
			if delErr := s.store.Delete(objectName); delErr != nil {
				slog.Error("掲載登録: ロゴ補償削除に失敗", "object", objectName, "error", delErr)
			}
		}
		return nil, fmt.Errorf("掲載の登録に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordListingRegistered()
	}
	slog.Info("掲載を登録", "listingID", l.ID, "ownerID", userID, "name", l.Name)

	if s.onCreated != nil {
		s.onCreated(l)
	}

	return l, nil
}

// storeLogo はフォームのロゴ指定を保存し、公開URLとオブジェクト名を返す。
// ロゴ未指定の場合は空文字列を返す。
func (s *Service) storeLogo(ctx context.Context, form Form) (publicURL, objectName string, err error) {
	switch {
	case len(form.LogoData) > 0:
		objectName = storage.ObjectName(s.now(), form.LogoFilename)
		publicURL, err = s.store.Save(objectName, form.LogoData)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordLogoUpload(false)
			}
			return "", "", model.NewLogoUploadFailedError(err.Error())
		}

	case form.LogoURL != "":
		if s.resolver == nil {
			return "", "", model.NewInvalidListingError("画像URLによる指定はサポートされていません")
		}
		data, ext, rerr := s.resolver.Resolve(ctx, form.LogoURL)
		if rerr != nil {
			if s.metrics != nil {
				s.metrics.RecordLogoUpload(false)
			}
			return "", "", rerr
		}
		objectName = storage.ObjectName(s.now(), "logo"+ext)
		publicURL, err = s.store.Save(objectName, data)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordLogoUpload(false)
			}
			return "", "", model.NewLogoUploadFailedError(err.Error())
		}

	default:
		// ロゴなし
		return "", "", nil
	}

	if s.metrics != nil {
		s.metrics.RecordLogoUpload(true)
	}
	return publicURL, objectName, nil
}

// validateForm は必須項目の存在を検証する。
func validateForm(form Form) error {
	switch {
	case strings.TrimSpace(form.Name) == "":
		return model.NewInvalidListingError("事業名は必須です")
	case strings.TrimSpace(form.Description) == "":
		return model.NewInvalidListingError("事業の説明は必須です")
	case strings.TrimSpace(form.PriceRaw) == "":
		return model.NewInvalidListingError("希望価格は必須です")
	case strings.TrimSpace(form.Industry) == "":
		return model.NewInvalidListingError("業種は必須です")
	case strings.TrimSpace(form.SellerName) == "":
		return model.NewInvalidListingError("売り手名は必須です")
	case strings.TrimSpace(form.SellerEmail) == "":
		return model.NewInvalidListingError("連絡先メールアドレスは必須です")
	case !strings.Contains(form.SellerEmail, "@"):
		return model.NewInvalidListingError("連絡先メールアドレスの形式が正しくありません")
	}
	return nil
}

// parsePrice は価格文字列を浮動小数点数として解釈する。
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, model.NewInvalidPriceError(raw)
	}
	if price <= 0 {
		return 0, model.NewInvalidPriceError(raw)
	}
	return price, nil
}
