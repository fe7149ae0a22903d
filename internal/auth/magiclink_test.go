package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/bizmarket/internal/model"
)

// mockMagicLinkRepo はテスト用のMagicLinkRepositoryモック。
type mockMagicLinkRepo struct {
	createFn  func(ctx context.Context, token *model.MagicLinkToken) error
	consumeFn func(ctx context.Context, token string) (*model.MagicLinkToken, error)
}

func (m *mockMagicLinkRepo) Create(ctx context.Context, token *model.MagicLinkToken) error {
	return m.createFn(ctx, token)
}

func (m *mockMagicLinkRepo) Consume(ctx context.Context, token string) (*model.MagicLinkToken, error) {
	return m.consumeFn(ctx, token)
}

// mockSender はテスト用のMagicLinkSenderモック。
type mockSender struct {
	sentEmail string
	sentLink  string
	sendFn    func(ctx context.Context, email, linkURL string) error
}

func (m *mockSender) Send(ctx context.Context, email, linkURL string) error {
	m.sentEmail = email
	m.sentLink = linkURL
	if m.sendFn != nil {
		return m.sendFn(ctx, email, linkURL)
	}
	return nil
}

// mockSessionIssuer はテスト用のSessionIssuerモック。
type mockSessionIssuer struct {
	issueFn func(ctx context.Context, userID string) (*model.Session, error)
}

func (m *mockSessionIssuer) IssueSession(ctx context.Context, userID string) (*model.Session, error) {
	return m.issueFn(ctx, userID)
}

// リンク発行でトークンが保存され、コード付きリンクが配送されることを検証
func TestIssue_Success(t *testing.T) {
	var saved *model.MagicLinkToken
	tokens := &mockMagicLinkRepo{
		createFn: func(ctx context.Context, token *model.MagicLinkToken) error {
			saved = token
			return nil
		},
	}
	sender := &mockSender{}
	svc := NewMagicLinkService(tokens, &mockUserRepo{}, &mockSessionIssuer{}, sender, "https://app.example.com/", 15*time.Minute)

	if err := svc.Issue(context.Background(), "Buyer@Example.com"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if saved == nil {
		t.Fatal("token not persisted")
	}
	if saved.Email != "buyer@example.com" {
		t.Errorf("email not normalized: %q", saved.Email)
	}
	if saved.Token == "" || saved.ExpiresAt.Before(time.Now()) {
		t.Errorf("invalid token: %+v", saved)
	}
	if sender.sentEmail != "buyer@example.com" {
		t.Errorf("sent to %q", sender.sentEmail)
	}
	if !strings.HasPrefix(sender.sentLink, "https://app.example.com/auth/callback?code=") {
		t.Errorf("unexpected link: %q", sender.sentLink)
	}
	if !strings.Contains(sender.sentLink, saved.Token) {
		t.Error("link does not carry the issued code")
	}
}

// 不正なメールアドレスでの発行が拒否されることを検証
func TestIssue_InvalidEmail(t *testing.T) {
	tokens := &mockMagicLinkRepo{
		createFn: func(ctx context.Context, token *model.MagicLinkToken) error {
			t.Fatal("token must not be created")
			return nil
		},
	}
	svc := NewMagicLinkService(tokens, &mockUserRepo{}, &mockSessionIssuer{}, &mockSender{}, "https://app.example.com", 15*time.Minute)

	for _, email := range []string{"", "no-at-sign", "  "} {
		if err := svc.Issue(context.Background(), email); err == nil {
			t.Errorf("Issue(%q) = nil, want error", email)
		}
	}
}

// コード交換で既存ユーザーのセッションが発行されることを検証
func TestExchange_ExistingUser(t *testing.T) {
	tokens := &mockMagicLinkRepo{
		consumeFn: func(ctx context.Context, token string) (*model.MagicLinkToken, error) {
			return &model.MagicLinkToken{Token: token, Email: "u@example.com"}, nil
		},
	}
	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email}, nil
		},
	}
	issuer := &mockSessionIssuer{
		issueFn: func(ctx context.Context, userID string) (*model.Session, error) {
			return &model.Session{ID: "s1", UserID: userID}, nil
		},
	}
	svc := NewMagicLinkService(tokens, users, issuer, &mockSender{}, "https://app.example.com", 15*time.Minute)

	session, err := svc.Exchange(context.Background(), "valid-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if session.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", session.UserID)
	}
}

// 未登録メールアドレスのコード交換でユーザーが自動作成されることを検証
func TestExchange_CreatesUser(t *testing.T) {
	tokens := &mockMagicLinkRepo{
		consumeFn: func(ctx context.Context, token string) (*model.MagicLinkToken, error) {
			return &model.MagicLinkToken{Token: token, Email: "new@example.com"}, nil
		},
	}
	var created *model.User
	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	issuer := &mockSessionIssuer{
		issueFn: func(ctx context.Context, userID string) (*model.Session, error) {
			return &model.Session{ID: "s1", UserID: userID}, nil
		},
	}
	svc := NewMagicLinkService(tokens, users, issuer, &mockSender{}, "https://app.example.com", 15*time.Minute)

	session, err := svc.Exchange(context.Background(), "valid-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if created == nil || created.Email != "new@example.com" {
		t.Errorf("user not auto-created: %+v", created)
	}
	if session.UserID != created.ID {
		t.Error("session not bound to auto-created user")
	}
}

// 無効・消費済みコードの交換が拒否されることを検証
func TestExchange_InvalidCode(t *testing.T) {
	tokens := &mockMagicLinkRepo{
		consumeFn: func(ctx context.Context, token string) (*model.MagicLinkToken, error) {
			return nil, nil // 期限切れ・消費済み・未知
		},
	}
	svc := NewMagicLinkService(tokens, &mockUserRepo{}, &mockSessionIssuer{}, &mockSender{}, "https://app.example.com", 15*time.Minute)

	for _, code := range []string{"", "consumed-or-unknown"} {
		_, err := svc.Exchange(context.Background(), code)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidMagicLink {
			t.Errorf("code=%q: unexpected error: %v", code, err)
		}
	}
}
