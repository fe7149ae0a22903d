package registration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/bizmarket/internal/model"
)

// mockCompanyRepo はテスト用のCompanyRepositoryモック。
type mockCompanyRepo struct {
	listAllFn     func(ctx context.Context) ([]*model.Listing, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]*model.Listing, error)
	findByIDFn    func(ctx context.Context, id string) (*model.Listing, error)
	createFn      func(ctx context.Context, listing *model.Listing) error
}

func (m *mockCompanyRepo) ListAll(ctx context.Context) ([]*model.Listing, error) {
	return m.listAllFn(ctx)
}

func (m *mockCompanyRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	return m.listByOwnerFn(ctx, ownerID)
}

func (m *mockCompanyRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockCompanyRepo) Create(ctx context.Context, listing *model.Listing) error {
	return m.createFn(ctx, listing)
}

// mockSanitizer はテスト用のContentSanitizerServiceモック。
type mockSanitizer struct {
	sanitizeFn func(rawHTML string) string
}

func (m *mockSanitizer) Sanitize(rawHTML string) string {
	if m.sanitizeFn != nil {
		return m.sanitizeFn(rawHTML)
	}
	return rawHTML
}

// mockLogoStore はテスト用のLogoStoreモック。
type mockLogoStore struct {
	saveFn   func(name string, data []byte) (string, error)
	deleteFn func(name string) error
	saved    []string
	deleted  []string
}

func (m *mockLogoStore) Save(name string, data []byte) (string, error) {
	m.saved = append(m.saved, name)
	if m.saveFn != nil {
		return m.saveFn(name, data)
	}
	return "https://example.com/logos/" + name, nil
}

func (m *mockLogoStore) Delete(name string) error {
	m.deleted = append(m.deleted, name)
	if m.deleteFn != nil {
		return m.deleteFn(name)
	}
	return nil
}

func (m *mockLogoStore) PublicURL(name string) string {
	return "https://example.com/logos/" + name
}

// mockLogoResolver はテスト用のLogoResolverServiceモック。
type mockLogoResolver struct {
	resolveFn func(ctx context.Context, rawURL string) ([]byte, string, error)
}

func (m *mockLogoResolver) Resolve(ctx context.Context, rawURL string) ([]byte, string, error) {
	return m.resolveFn(ctx, rawURL)
}

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func validForm() Form {
	return Form{
		Name:        "Lila's Bakery",
		Description: "<p>駅前の老舗ベーカリー</p>",
		PriceRaw:    "450000",
		Industry:    "Food",
		SellerName:  "Lila Svensson",
		SellerEmail: "lila@example.com",
	}
}

// 掲載が所有者付きで登録されることを検証
func TestSubmit_Success(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	var callbackArg *model.Listing
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, nil, nil, func(l *model.Listing) {
		callbackArg = l
	})

	got, err := svc.Submit(context.Background(), "user-1", validForm())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created == nil {
		t.Fatal("listing not persisted")
	}
	if created.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q, want user-1", created.OwnerID)
	}
	if created.Source != model.SourceRemote {
		t.Errorf("Source = %q, want remote", created.Source)
	}
	if created.Price != 450000 {
		t.Errorf("Price = %v, want 450000", created.Price)
	}
	if got.ID == "" {
		t.Error("listing ID not assigned")
	}
	if callbackArg != got {
		t.Error("creation callback not invoked with stored listing")
	}
}

// 登録時刻が採番されてそのまま永続化されることを検証。
// リポジトリはCreatedAtを明示的にINSERTするため、ゼロ値のままだと
// created_at順の並びが壊れる。
func TestSubmit_StampsCreatedAt(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, nil, nil, nil)
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.Submit(context.Background(), "user-1", validForm())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("CreatedAt is zero: insertion ordering by created_at would break")
	}
	if !created.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, fixed)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("returned CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
}

// 未認証での登録が拒否されることを検証
func TestSubmit_RequiresUser(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			t.Fatal("insert must not be attempted without a user")
			return nil
		},
	}
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), "", validForm())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("unexpected error: %v", err)
	}
}

// 必須項目の欠落が検証エラーになることを検証
func TestSubmit_ValidatesRequiredFields(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error { return nil },
	}
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, nil, nil, nil)

	mutations := []func(*Form){
		func(f *Form) { f.Name = "" },
		func(f *Form) { f.Description = "  " },
		func(f *Form) { f.PriceRaw = "" },
		func(f *Form) { f.Industry = "" },
		func(f *Form) { f.SellerName = "" },
		func(f *Form) { f.SellerEmail = "" },
		func(f *Form) { f.SellerEmail = "not-an-email" },
	}
	for i, mutate := range mutations {
		form := validForm()
		mutate(&form)
		_, err := svc.Submit(context.Background(), "user-1", form)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidListing {
			t.Errorf("mutation %d: unexpected error: %v", i, err)
		}
	}
}

// 数値として解釈できない価格が拒否されることを検証
func TestSubmit_RejectsUnparsablePrice(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error { return nil },
	}
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, nil, nil, nil)

	for _, raw := range []string{"abc", "12,000", "-100", "0"} {
		form := validForm()
		form.PriceRaw = raw
		_, err := svc.Submit(context.Background(), "user-1", form)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidPrice {
			t.Errorf("PriceRaw=%q: unexpected error: %v", raw, err)
		}
	}
}

// 説明文が保存前にサニタイズされることを検証
func TestSubmit_SanitizesDescription(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	sanitizer := &mockSanitizer{
		sanitizeFn: func(raw string) string {
			return strings.ReplaceAll(raw, "<script>x</script>", "")
		},
	}
	svc := NewService(repo, sanitizer, &mockLogoStore{}, nil, nil, nil)

	form := validForm()
	form.Description = "<p>desc</p><script>x</script>"
	if _, err := svc.Submit(context.Background(), "user-1", form); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if strings.Contains(created.Description, "<script>") {
		t.Errorf("description not sanitized: %q", created.Description)
	}
}

// ロゴ保存が挿入より先に行われ、失敗時は挿入しないことを検証
func TestSubmit_LogoFailureAbortsBeforeInsert(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			t.Fatal("insert must not run after logo store failure")
			return nil
		},
	}
	store := &mockLogoStore{
		saveFn: func(name string, data []byte) (string, error) {
			return "", errors.New("disk full")
		},
	}
	svc := NewService(repo, &mockSanitizer{}, store, nil, nil, nil)

	form := validForm()
	form.LogoData = pngBytes
	form.LogoFilename = "logo.png"

	_, err := svc.Submit(context.Background(), "user-1", form)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLogoUploadFailed {
		t.Errorf("unexpected error: %v", err)
	}
}

// ロゴ付き登録で公開URLが掲載に設定されることを検証
func TestSubmit_LogoUploadSetsImageURL(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	store := &mockLogoStore{}
	svc := NewService(repo, &mockSanitizer{}, store, nil, nil, nil)

	form := validForm()
	form.LogoData = pngBytes
	form.LogoFilename = "shop.png"

	if _, err := svc.Submit(context.Background(), "user-1", form); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatalf("Save called %d times, want 1", len(store.saved))
	}
	if !strings.HasSuffix(store.saved[0], ".png") {
		t.Errorf("object name %q does not keep extension", store.saved[0])
	}
	if !strings.Contains(created.ImageURL, "/logos/") {
		t.Errorf("ImageURL = %q, want public logo URL", created.ImageURL)
	}
}

// 画像URL指定時にリゾルバー経由で保存されることを検証
func TestSubmit_LogoURLResolved(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	store := &mockLogoStore{}
	resolver := &mockLogoResolver{
		resolveFn: func(ctx context.Context, rawURL string) ([]byte, string, error) {
			return pngBytes, ".png", nil
		},
	}
	svc := NewService(repo, &mockSanitizer{}, store, resolver, nil, nil)

	form := validForm()
	form.LogoURL = "https://example.com/page"

	if _, err := svc.Submit(context.Background(), "user-1", form); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatalf("Save called %d times, want 1", len(store.saved))
	}
	if created.ImageURL == "" {
		t.Error("ImageURL not set from resolved logo")
	}
}

// URL解決の失敗（SSRFブロック等）が挿入前に中断することを検証
func TestSubmit_LogoURLBlockedAborts(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			t.Fatal("insert must not run after blocked logo URL")
			return nil
		},
	}
	resolver := &mockLogoResolver{
		resolveFn: func(ctx context.Context, rawURL string) ([]byte, string, error) {
			return nil, "", model.NewLogoURLBlockedError()
		},
	}
	svc := NewService(repo, &mockSanitizer{}, &mockLogoStore{}, resolver, nil, nil)

	form := validForm()
	form.LogoURL = "http://169.254.169.254/latest/meta-data/"

	_, err := svc.Submit(context.Background(), "user-1", form)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLogoURLBlocked {
		t.Errorf("unexpected error: %v", err)
	}
}

// 挿入失敗時に保存済みロゴが補償削除されることを検証
func TestSubmit_CompensatingLogoDeleteOnInsertFailure(t *testing.T) {
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			return errors.New("pq: value too long for type character varying")
		},
	}
	store := &mockLogoStore{}
	svc := NewService(repo, &mockSanitizer{}, store, nil, nil, nil)

	form := validForm()
	form.LogoData = pngBytes
	form.LogoFilename = "logo.png"

	_, err := svc.Submit(context.Background(), "user-1", form)
	if err == nil {
		t.Fatal("expected error")
	}
	// 挿入失敗の詳細がそのまま伝搬する
	if !strings.Contains(err.Error(), "value too long") {
		t.Errorf("insert error not surfaced verbatim: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.saved[0] {
		t.Errorf("stored logo not compensating-deleted: saved=%v deleted=%v", store.saved, store.deleted)
	}
}

// ロゴなし登録でImageURLが空になることを検証
func TestSubmit_NoLogo(t *testing.T) {
	var created *model.Listing
	repo := &mockCompanyRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	store := &mockLogoStore{}
	svc := NewService(repo, &mockSanitizer{}, store, nil, nil, nil)

	if _, err := svc.Submit(context.Background(), "user-1", validForm()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", created.ImageURL)
	}
	if len(store.saved) != 0 {
		t.Errorf("Save called %d times, want 0", len(store.saved))
	}
}
