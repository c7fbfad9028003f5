package calendar

import (
	"fmt"
	"time"
)

const (
	// DateLayout は日付パラメータの形式。
	DateLayout = "2006-01-02"
	// MonthLayout は月パラメータの形式。
	MonthLayout = "2006-01"
)

// ParseDate はYYYY-MM-DD形式の文字列をUTC深夜0時の日付として解析する。
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseMonth はYYYY-MM形式の文字列を月初日の日付として解析する。
func ParseMonth(s string) (time.Time, error) {
	m, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return m, nil
}

// MonthRange は指定月の初日と末日を返す。
// 末日は翌月初日の前日として求めるため、12月→翌年1月の繰り越しや
// うるう年の2月を含む月の長さの違いを正しく扱う。
func MonthRange(month time.Time) (first, last time.Time) {
	first = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return first, last
}

// Normalize は時刻情報を落としてUTC深夜0時の日付に正規化する。
// DBのDATE列から読み出した値とアプリ側で生成した値を同じキーで比較するために使う。
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey は日付をマップのキーとして使える文字列に変換する。
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
