// Package storage は掲載ロゴ画像のblobストアを提供する。
// company-logosバケット相当をローカルディレクトリで実装し、
// 保存したオブジェクトの公開URLを解決する。
package storage

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxLogoNameLen はオブジェクト名の最大長。
const maxLogoNameLen = 128

// LogoStore はロゴ画像の保存・削除と公開URL解決のインターフェース。
type LogoStore interface {
	// Save はロゴ画像を指定オブジェクト名で保存し、公開URLを返す。
	// データが画像でない場合、またはサイズ上限を超える場合はエラーを返す。
	Save(name string, data []byte) (publicURL string, err error)

	// Delete は保存済みオブジェクトを削除する。
	// 存在しないオブジェクトの削除はエラーにしない（冪等）。
	Delete(name string) error

	// PublicURL はオブジェクト名から公開URLを解決する。
	PublicURL(name string) string
}

// ObjectName は現在時刻と拡張子からオブジェクト名を導出する。
// 元ファイル名は使用しない（パス注入と衝突の回避）。
func ObjectName(now time.Time, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		ext = ".png"
	}
	return fmt.Sprintf("%d%s", now.UnixMilli(), ext)
}

// DiskLogoStore はローカルディレクトリを使用したLogoStoreの実装。
// 公開URLは baseURL + "/logos/" + name に解決され、
// 同じディレクトリをHTTPハンドラーが静的配信する。
type DiskLogoStore struct {
	dir     string
	baseURL string
	maxSize int64
}

// NewDiskLogoStore はDiskLogoStoreを生成し、保存先ディレクトリを作成する。
func NewDiskLogoStore(dir, baseURL string, maxSize int64) (*DiskLogoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logo directory: %w", err)
	}
	return &DiskLogoStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

// Dir は保存先ディレクトリを返す。静的配信ハンドラーの構築に使用する。
func (s *DiskLogoStore) Dir() string {
	return s.dir
}

// Save はロゴ画像を保存し、公開URLを返す。
func (s *DiskLogoStore) Save(name string, data []byte) (string, error) {
	if err := validateObjectName(name); err != nil {
		return "", err
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("logo exceeds size limit: %d > %d bytes", len(data), s.maxSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty logo data")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("not an image: detected content type %s", contentType)
	}

	dst := filepath.Join(s.dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write logo: %w", err)
	}

	return s.PublicURL(name), nil
}

// Delete は保存済みオブジェクトを削除する。
func (s *DiskLogoStore) Delete(name string) error {
	if err := validateObjectName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete logo: %w", err)
	}
	return nil
}

// PublicURL はオブジェクト名から公開URLを解決する。
func (s *DiskLogoStore) PublicURL(name string) string {
	return s.baseURL + path.Join("/logos", name)
}

// validateObjectName はオブジェクト名がディレクトリ内に閉じていることを検証する。
func validateObjectName(name string) error {
	if name == "" || len(name) > maxLogoNameLen {
		return fmt.Errorf("invalid object name: %q", name)
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return fmt.Errorf("invalid object name: %q", name)
	}
	return nil
}

// compile-time interface check
var _ LogoStore = (*DiskLogoStore)(nil)
