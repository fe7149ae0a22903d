// Package user はユーザーアカウント管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bizmarket/internal/model"
	"github.com/hitoshi/bizmarket/internal/repository"
)

// Service はユーザーアカウント管理サービス。
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, sessions repository.SessionRepository) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
	}
}

// Withdraw は退会処理を実行する。
// 全セッションを先に失効させ、その後ユーザーを削除する。
// 資格情報・identity・掲載・意思表明はDBのCASCADEで削除される。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	if err := s.users.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("ユーザーが退会", "userID", userID, "email", u.Email)
	return nil
}
