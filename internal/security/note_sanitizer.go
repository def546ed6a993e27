package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NoteSanitizer はメモのタイトルと本文をサニタイズする。
// 保存前に適用し、格納型XSSを防ぐ。
//   - タイトル・タグ: 全てのタグを除去したプレーンテキスト（StrictPolicy）
//   - 本文: 簡易な書式タグのみ許可したHTML
//
// bluemondayはテキスト中の & < > " ' をHTMLエスケープして返す。
// タイトルとタグはプレーンテキストとして扱うため、エスケープを元に戻して保存する。
// 表示側でのエスケープはクライアントの責務となる。
type NoteSanitizer struct {
	title   *bluemonday.Policy
	content *bluemonday.Policy
}

// NewNoteSanitizer はNoteSanitizerを生成する。
// 本文ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, h1-h3
//   - aタグ: http/httpsのhrefのみ、target="_blank"とrel="noopener noreferrer"を自動付与
//   - script, iframe, style, img と on*イベント属性は除去
func NewNoteSanitizer() *NoteSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "h1", "h2", "h3",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &NoteSanitizer{
		title:   bluemonday.StrictPolicy(),
		content: p,
	}
}

// SanitizeTitle はタイトルからタグを全て除去し、前後の空白を取り除く。
// "Tom & Jerry" のようなテキストはそのまま返す。
func (s *NoteSanitizer) SanitizeTitle(raw string) string {
	return s.plainText(raw)
}

// plainText はマークアップを除去し、エスケープされた文字を元に戻す。
func (s *NoteSanitizer) plainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.title.Sanitize(raw)))
}

// SanitizeContent は本文を許可リストのタグのみに制限する。
// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
func (s *NoteSanitizer) SanitizeContent(raw string) string {
	return s.content.Sanitize(raw)
}

// SanitizeTags は各タグからマークアップと前後の空白を除去し、空のタグと重複を取り除く。
// 元の順序は維持する。
func (s *NoteSanitizer) SanitizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		clean := s.plainText(t)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		tags = append(tags, clean)
	}
	return tags
}
