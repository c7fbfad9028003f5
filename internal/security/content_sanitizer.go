// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー入力（予定タイトル・説明・月タイトル）を
// サニタイズし、XSS攻撃などのセキュリティリスクから保護する。
// bluemondayライブラリの許可リストベースのポリシーを使用する。
package security

import "github.com/microcosm-cc/bluemonday"

// ContentSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// ユーザー入力の保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText はタイトル等の平文フィールドから全てのHTMLタグを除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizeDescription は予定の説明から危険なHTMLを除去する。
	// 許可タグ（p, br, ul, ol, li, strong, em, code）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	SanitizeDescription(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	textPolicy        *bluemonday.Policy
	descriptionPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 平文フィールド: StrictPolicy（全タグ除去）
//   - 説明フィールド: p, br, ul, ol, li, strong, em, code のみ許可。
//     リンクと画像はカレンダー表示に不要なため許可しない。
func NewContentSanitizer() *contentSanitizer {
	desc := bluemonday.NewPolicy()
	desc.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "code",
	)

	return &contentSanitizer{
		textPolicy:        bluemonday.StrictPolicy(),
		descriptionPolicy: desc,
	}
}

// SanitizeText はタイトル等の平文フィールドから全てのHTMLタグを除去する。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return s.textPolicy.Sanitize(raw)
}

// SanitizeDescription は予定の説明から危険なHTMLを除去する。
func (s *contentSanitizer) SanitizeDescription(raw string) string {
	return s.descriptionPolicy.Sanitize(raw)
}
