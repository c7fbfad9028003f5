package security

import (
	"strings"
	"testing"
)

func TestSanitizeText_RemovesAllTags(t *testing.T) {
	s := NewContentSanitizer()

	cases := []struct {
		in   string
		want string
	}{
		{`<script>alert(1)</script>読書`, "読書"},
		{`<b>太字</b>のタイトル`, "太字のタイトル"},
		{`普通のタイトル`, "普通のタイトル"},
		{``, ``},
	}
	for _, c := range cases {
		if got := s.SanitizeText(c.in); got != c.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeText_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	in := `<img src=x onerror=alert(1)>タイトル`
	once := s.SanitizeText(in)
	twice := s.SanitizeText(once)

	if once != twice {
		t.Errorf("SanitizeText は冪等であるべき: %q != %q", once, twice)
	}
}

func TestSanitizeDescription_AllowsSafeTags(t *testing.T) {
	s := NewContentSanitizer()

	in := `<p>準備: <strong>資料</strong></p><ul><li>印刷</li></ul>`
	got := s.SanitizeDescription(in)

	for _, tag := range []string{"<p>", "<strong>", "<ul>", "<li>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("許可タグ %s が除去された: %q", tag, got)
		}
	}
}

func TestSanitizeDescription_RemovesDangerousContent(t *testing.T) {
	s := NewContentSanitizer()

	cases := []string{
		`<script>alert(1)</script>`,
		`<iframe src="https://evil.example"></iframe>`,
		`<style>body{display:none}</style>`,
		`<p onclick="alert(1)">クリック</p>`,
		`<a href="javascript:alert(1)">リンク</a>`,
	}
	for _, in := range cases {
		got := s.SanitizeDescription(in)
		for _, bad := range []string{"<script", "<iframe", "<style", "onclick", "javascript:"} {
			if strings.Contains(got, bad) {
				t.Errorf("SanitizeDescription(%q) に %q が残っている: %q", in, bad, got)
			}
		}
	}
}
