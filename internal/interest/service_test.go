package interest

import (
	"context"
	"errors"
	"testing"

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

// mockInterestRepo はテスト用のInterestRepositoryモック。
type mockInterestRepo struct {
	createFn           func(ctx context.Context, interest *model.Interest) error
	listByCompanyIDsFn func(ctx context.Context, companyIDs []string) ([]*model.Interest, error)
}

func (m *mockInterestRepo) Create(ctx context.Context, interest *model.Interest) error {
	return m.createFn(ctx, interest)
}

func (m *mockInterestRepo) ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]*model.Interest, error) {
	return m.listByCompanyIDsFn(ctx, companyIDs)
}

func remoteListing(id string) *model.Listing {
	return &model.Listing{
		ID:      id,
		Name:    "Remote Shop",
		Source:  model.SourceRemote,
		OwnerID: "owner-1",
	}
}

// 登録済み掲載への意思表明が記録されることを検証
func TestRecord_Success(t *testing.T) {
	var saved *model.Interest
	companies := &mockCompanyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return remoteListing(id), nil
		},
	}
	interests := &mockInterestRepo{
		createFn: func(ctx context.Context, interest *model.Interest) error {
			saved = interest
			return nil
		},
	}
	svc := NewService(companies, interests, nil)

	got, err := svc.Record(context.Background(), "buyer-1", "buyer@example.com", "listing-1")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if saved == nil {
		t.Fatal("interest not persisted")
	}
	if saved.ListingID != "listing-1" || saved.BuyerID != "buyer-1" || saved.BuyerEmail != "buyer@example.com" {
		t.Errorf("unexpected interest: %+v", saved)
	}
	if got.ID == "" {
		t.Error("interest ID not assigned")
	}
}

// シード掲載（ディレクトリ未登録）への意思表明が拒否されることを検証
func TestRecord_RefusesSeedListing(t *testing.T) {
	companies := &mockCompanyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return nil, nil // ディレクトリに存在しない
		},
	}
	interests := &mockInterestRepo{
		createFn: func(ctx context.Context, interest *model.Interest) error {
			t.Fatal("insert must not be attempted for seed listings")
			return nil
		},
	}
	svc := NewService(companies, interests, nil)

	_, err := svc.Record(context.Background(), "buyer-1", "buyer@example.com", "3")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSeedListing {
		t.Errorf("unexpected error: %v", err)
	}
}

// 所有者を持たない掲載への意思表明が拒否されることを検証
func TestRecord_RefusesListingWithoutOwner(t *testing.T) {
	companies := &mockCompanyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return &model.Listing{ID: id, Source: model.SourceRemote, OwnerID: ""}, nil
		},
	}
	interests := &mockInterestRepo{
		createFn: func(ctx context.Context, interest *model.Interest) error { return nil },
	}
	svc := NewService(companies, interests, nil)

	_, err := svc.Record(context.Background(), "buyer-1", "b@example.com", "x")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSeedListing {
		t.Errorf("unexpected error: %v", err)
	}
}

// 保存失敗時に汎用エラーを返すことを検証（詳細は漏らさない）
func TestRecord_GenericErrorOnInsertFailure(t *testing.T) {
	companies := &mockCompanyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return remoteListing(id), nil
		},
	}
	interests := &mockInterestRepo{
		createFn: func(ctx context.Context, interest *model.Interest) error {
			return errors.New("pq: deadlock detected")
		},
	}
	svc := NewService(companies, interests, nil)

	_, err := svc.Record(context.Background(), "buyer-1", "b@example.com", "listing-1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInterestFailed {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiErr.Message == "pq: deadlock detected" {
		t.Error("internal detail leaked to user-facing message")
	}
}

// 重複する意思表明が排除されないことを検証（2回の表明 = 2レコード）
func TestRecord_AllowsDuplicates(t *testing.T) {
	inserts := 0
	companies := &mockCompanyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return remoteListing(id), nil
		},
	}
	interests := &mockInterestRepo{
		createFn: func(ctx context.Context, interest *model.Interest) error {
			inserts++
			return nil
		},
	}
	svc := NewService(companies, interests, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.Record(context.Background(), "buyer-1", "b@example.com", "listing-1"); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}
	if inserts != 2 {
		t.Errorf("inserts = %d, want 2", inserts)
	}
}

// 売り手ビューが掲載ごとの意思表明を返すことを検証
func TestListByOwner(t *testing.T) {
	companies := &mockCompanyRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]*model.Listing, error) {
			return []*model.Listing{
				remoteListing("l1"),
				remoteListing("l2"),
			}, nil
		},
	}
	interests := &mockInterestRepo{
		listByCompanyIDsFn: func(ctx context.Context, companyIDs []string) ([]*model.Interest, error) {
			return []*model.Interest{
				{ID: "i1", ListingID: "l1", BuyerID: "b1", BuyerEmail: "b1@example.com"},
				{ID: "i2", ListingID: "l1", BuyerID: "b2", BuyerEmail: "b2@example.com"},
			}, nil
		},
	}
	svc := NewService(companies, interests, nil)

	got, err := svc.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if len(got[0].Interests) != 2 {
		t.Errorf("listing l1 has %d interests, want 2", len(got[0].Interests))
	}
	if len(got[1].Interests) != 0 {
		t.Errorf("listing l2 has %d interests, want 0", len(got[1].Interests))
	}
}

// 掲載を持たない売り手に空の一覧を返すことを検証
func TestListByOwner_NoListings(t *testing.T) {
	companies := &mockCompanyRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]*model.Listing, error) {
			return nil, nil
		},
	}
	interests := &mockInterestRepo{
		listByCompanyIDsFn: func(ctx context.Context, companyIDs []string) ([]*model.Interest, error) {
			t.Fatal("interests must not be queried without listings")
			return nil, nil
		},
	}
	svc := NewService(companies, interests, nil)

	got, err := svc.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}
