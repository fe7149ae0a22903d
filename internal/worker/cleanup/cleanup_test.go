package cleanup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeResult struct {
	rowsAffected int64
}

func (r *fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// Executor インターフェースに対するモック実装
type mockExecutor struct {
	queries []string
	args    [][]interface{}
	result  sql.Result
	err     error
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.queries = append(m.queries, query)
	m.args = append(m.args, args)
	return m.result, m.err
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// 期限切れセッションとトークンの双方がDELETEされることを検証
func TestCleanupJob_Run_ExecutesDeleteQueries(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 5},
	}
	job := NewCleanupJob(mock, logger)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	if len(mock.queries) != 2 {
		t.Fatalf("ExecContext が %d 回呼ばれた, want 2", len(mock.queries))
	}
	if !strings.Contains(mock.queries[0], "DELETE FROM sessions") || !strings.Contains(mock.queries[0], "expires_at") {
		t.Errorf("セッション削除クエリが期待と異なる: %s", mock.queries[0])
	}
	if !strings.Contains(mock.queries[1], "DELETE FROM magic_link_tokens") {
		t.Errorf("トークン削除クエリが期待と異なる: %s", mock.queries[1])
	}
	if !strings.Contains(mock.queries[1], "consumed_at") {
		t.Errorf("消費済みトークンの条件が含まれていない: %s", mock.queries[1])
	}
}

// トークン保持期間がintervalパラメータとして渡されることを検証
func TestCleanupJob_Run_UsesRetentionParameter(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 0},
	}
	job := NewCleanupJob(mock, logger)
	job.TokenRetention = time.Hour

	_ = job.Run(context.Background())

	if len(mock.args) < 2 || len(mock.args[1]) < 1 {
		t.Fatal("トークン削除クエリに引数が渡されなかった")
	}
	argStr, ok := mock.args[1][0].(string)
	if !ok {
		t.Fatalf("第1引数が string ではない: %T", mock.args[1][0])
	}
	if argStr != "3600 seconds" {
		t.Errorf("interval引数 = %q, want %q", argStr, "3600 seconds")
	}
}

// ログに削除件数と処理時間が記録されることを検証
func TestCleanupJob_Run_LogsDeletedCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 42},
	}
	job := NewCleanupJob(mock, logger)

	_ = job.Run(context.Background())

	var entry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	found := false
	for _, line := range lines {
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry["sessions_deleted"] == float64(42) && entry["tokens_deleted"] == float64(42) {
			if _, ok := entry["duration_ms"]; ok {
				found = true
				break
			}
		}
	}
	if !found {
		t.Errorf("削除件数と処理時間がログに記録されていない。ログ出力: %s", buf.String())
	}
}

// DBエラー時にエラーを返しERRORログを出力することを検証
func TestCleanupJob_Run_ReturnsErrorOnDBFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: nil,
		err:    sql.ErrConnDone,
	}
	job := NewCleanupJob(mock, logger)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("DBエラー時に Run() は nil でないエラーを返すべき")
	}
	if !strings.Contains(buf.String(), "ERROR") {
		t.Errorf("エラー時にERRORレベルのログが記録されていない。ログ出力: %s", buf.String())
	}
}

// 削除対象がなくてもエラーにならないこと（冪等性）を検証
func TestCleanupJob_Run_Idempotent_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 0},
	}
	job := NewCleanupJob(mock, logger)

	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("%d回目の Run() がエラーを返した: %v", i+1, err)
		}
	}
}
