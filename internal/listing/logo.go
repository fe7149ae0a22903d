package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/bizmarket/internal/model"
)

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// LogoResolverService はロゴURL解決のインターフェース。
// 掲載登録でロゴが画像URLとして指定された場合に使用される。
type LogoResolverService interface {
	// Resolve は指定URLからロゴ画像データと拡張子を取得する。
	// URLが画像を直接指す場合はその画像を、HTMLページを指す場合は
	// og:image または rel=icon のリンクを検出してその画像を取得する。
	Resolve(ctx context.Context, rawURL string) (data []byte, ext string, err error)
}

// LogoResolver はロゴURL解決機能の実装。
type LogoResolver struct {
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxSize   int64
}

// NewLogoResolver はLogoResolverの新しいインスタンスを生成する。
func NewLogoResolver(ssrfGuard SSRFValidator, timeout time.Duration, maxSize int64) *LogoResolver {
	return &LogoResolver{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Resolve は指定URLからロゴ画像データと拡張子を取得する。
// 1. SSRF検証を実行
// 2. URLにHTTPリクエストを送信
// 3. レスポンスが画像ならそのまま返す
// 4. HTMLの場合はog:image / rel=iconを検出し、そのURLの画像を取得
// 5. 画像が得られない場合はエラー（原因カテゴリ + 対処方法）を返す
func (r *LogoResolver) Resolve(ctx context.Context, rawURL string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", model.NewInvalidListingError("画像URLが入力されていません")
	}

	if r.ssrfGuard != nil {
		if err := r.ssrfGuard.ValidateURL(rawURL); err != nil {
			slog.Warn("ロゴ解決: SSRFブロック", "url", rawURL, "error", err)
			return nil, "", model.NewLogoURLBlockedError()
		}
	}

	body, contentType, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, "", model.NewLogoUploadFailedError(err.Error())
	}

	mediaType := extractMediaType(contentType)

	// 画像の直接URL
	if strings.HasPrefix(mediaType, "image/") {
		return body, logoExtension(mediaType, rawURL), nil
	}

	// HTMLページ: og:image / rel=icon を検出
	if !strings.Contains(mediaType, "html") {
		return nil, "", model.NewLogoUploadFailedError(fmt.Sprintf("画像でないコンテンツです: %s", mediaType))
	}

	imageURL := findLogoURLInHTML(body, rawURL)
	if imageURL == "" {
		return nil, "", model.NewLogoUploadFailedError("ページから画像を検出できませんでした")
	}

	if r.ssrfGuard != nil {
		if err := r.ssrfGuard.ValidateURL(imageURL); err != nil {
			slog.Warn("ロゴ解決: 検出画像URLをSSRFブロック", "url", imageURL, "error", err)
			return nil, "", model.NewLogoURLBlockedError()
		}
	}

	imgBody, imgType, err := r.fetch(ctx, imageURL)
	if err != nil {
		return nil, "", model.NewLogoUploadFailedError(err.Error())
	}

	imgMediaType := extractMediaType(imgType)
	if !strings.HasPrefix(imgMediaType, "image/") {
		return nil, "", model.NewLogoUploadFailedError(fmt.Sprintf("検出されたURLが画像ではありません: %s", imgMediaType))
	}

	return imgBody, logoExtension(imgMediaType, imageURL), nil
}

// fetch は指定URLのレスポンスボディとContent-Typeを取得する。
func (r *LogoResolver) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	client := r.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "Bizmarket/1.0")
	req.Header.Set("Accept", "image/*, text/html, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("取得に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("取得に失敗: HTTPステータス %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}
	if int64(len(body)) > r.maxSize {
		return nil, "", fmt.Errorf("サイズ超過: %dバイトを超えています", r.maxSize)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// getHTTPClient はHTTPクライアントを取得する。
// SSRFGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (r *LogoResolver) getHTTPClient() *http.Client {
	if r.ssrfGuard != nil {
		return r.ssrfGuard.NewSafeClient(r.timeout, r.maxSize)
	}
	return &http.Client{Timeout: r.timeout}
}

// findLogoURLInHTML はHTMLのheadタグからロゴ候補URLを検出する。
// 優先順位: og:image > rel=apple-touch-icon > rel=icon。
// 相対URLはbaseURLを基準に絶対URLに解決される。
func findLogoURLInHTML(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	var ogImage, touchIcon, icon string

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return pickLogoCandidate(baseU, ogImage, touchIcon, icon)

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return pickLogoCandidate(baseU, ogImage, touchIcon, icon)
			}

			if !hasAttr || (tagName != "meta" && tagName != "link") {
				continue
			}

			var property, name, content, rel, href string
			for {
				key, val, more := tokenizer.TagAttr()
				k := strings.ToLower(string(key))
				v := string(val)
				switch k {
				case "property":
					property = strings.ToLower(v)
				case "name":
					name = strings.ToLower(v)
				case "content":
					content = v
				case "rel":
					rel = strings.ToLower(v)
				case "href":
					href = v
				}
				if !more {
					break
				}
			}

			if tagName == "meta" && content != "" {
				if property == "og:image" || name == "og:image" {
					if ogImage == "" {
						ogImage = content
					}
				}
				continue
			}

			if tagName == "link" && href != "" {
				switch {
				case strings.Contains(rel, "apple-touch-icon"):
					if touchIcon == "" {
						touchIcon = href
					}
				case strings.Contains(rel, "icon"):
					if icon == "" {
						icon = href
					}
				}
			}
		}
	}
}

// pickLogoCandidate は検出済み候補から優先順位に従ってURLを選択し、絶対URLに解決する。
func pickLogoCandidate(base *url.URL, ogImage, touchIcon, icon string) string {
	for _, candidate := range []string{ogImage, touchIcon, icon} {
		if candidate == "" {
			continue
		}
		ref, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

// extractMediaType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.ToLower(mediaType)
}

// logoExtension はメディアタイプまたはURLのパスからファイル拡張子を導出する。
func logoExtension(mediaType, rawURL string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/x-icon", "image/vnd.microsoft.icon", "image/ico":
		return ".ico"
	}
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 8 {
			return ext
		}
	}
	return ".png"
}

// compile-time interface check
var _ LogoResolverService = (*LogoResolver)(nil)
