package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/repository"
)

// MagicLinkSender はワンタイムリンクの配送手段のインターフェース。
// 本番ではメール送信、開発環境ではログ出力に差し替えられる。
type MagicLinkSender interface {
	// Send は指定メールアドレス宛にログインリンクを配送する。
	Send(ctx context.Context, email, linkURL string) error
}

// LogMagicLinkSender はリンクをログに出力するMagicLinkSender実装。
// メール配送基盤のない開発環境向け。
type LogMagicLinkSender struct{}

// Send はログインリンクをログに出力する。
func (s *LogMagicLinkSender) Send(ctx context.Context, email, linkURL string) error {
	slog.Info("ログインリンクを発行", "email", email, "link", linkURL)
	return nil
}

// SessionIssuer はユーザーIDからセッションを発行するインターフェース。
// auth.Serviceを抽象化してテスタビリティを向上させる。
type SessionIssuer interface {
	IssueSession(ctx context.Context, userID string) (*model.Session, error)
}

// MagicLinkService はワンタイムリンク認証のビジネスロジックを提供する。
//
// リンクの発行はメールアドレスの登録有無を問わない。交換時に未登録の
// メールアドレスであればユーザーを自動作成する（リンクの所有 =
// メールボックスの所有証明）。トークンは1回の交換で消費される。
type MagicLinkService struct {
	tokens   repository.MagicLinkRepository
	users    repository.UserRepository
	sessions SessionIssuer
	sender   MagicLinkSender
	baseURL  string
	ttl      time.Duration
}

// NewMagicLinkService はMagicLinkServiceを生成する。
func NewMagicLinkService(
	tokens repository.MagicLinkRepository,
	users repository.UserRepository,
	sessions SessionIssuer,
	sender MagicLinkSender,
	baseURL string,
	ttl time.Duration,
) *MagicLinkService {
	return &MagicLinkService{
		tokens:   tokens,
		users:    users,
		sessions: sessions,
		sender:   sender,
		baseURL:  strings.TrimRight(baseURL, "/"),
		ttl:      ttl,
	}
}

// Issue は指定メールアドレス宛にワンタイムリンクを発行・配送する。
// メールアドレスの登録有無をレスポンスで判別できないよう、
// どちらの場合も同じ成功応答になる。
func (s *MagicLinkService) Issue(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.NewInvalidSignUpError("メールアドレスの形式が正しくありません")
	}

	code, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate magic link token: %w", err)
	}

	token := &model.MagicLinkToken{
		Token:     code,
		Email:     email,
		ExpiresAt: time.Now().Add(s.ttl),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to save magic link token: %w", err)
	}

	linkURL := s.baseURL + "/auth/callback?code=" + url.QueryEscape(code)
	if err := s.sender.Send(ctx, email, linkURL); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}

	slog.Info("magic link issued", slog.String("email", email))
	return nil
}

// Exchange はワンタイムリンクのコードをセッションに交換する。
// 期限切れ・消費済み・未知のコードはすべて同じエラーになる。
// 未登録のメールアドレスの場合はユーザーを自動作成する。
func (s *MagicLinkService) Exchange(ctx context.Context, code string) (*model.Session, error) {
	if code == "" {
		return nil, model.NewInvalidMagicLinkError()
	}

	token, err := s.tokens.Consume(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to consume magic link token: %w", err)
	}
	if token == nil {
		return nil, model.NewInvalidMagicLinkError()
	}

	u, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if u == nil {
		now := time.Now()
		u = &model.User{
			ID:        uuid.New().String(),
			Email:     token.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created via magic link",
			slog.String("user_id", u.ID),
			slog.String("email", u.Email),
		)
	}

	return s.sessions.IssueSession(ctx, u.ID)
}
