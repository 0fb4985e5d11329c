package models

import "sort"

// List はTrelloボード上のリスト（カラム）を表します
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label はTrelloのラベルを表します
// Name は見出し文字列か、数値（時間・重み）を文字列化したものです
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Card はTrelloのカードを表します
type Card struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	IDList string  `json:"idList"`
	Labels []Label `json:"labels"`
}

// OutlineItem はアウトラインファイルの1行を表します
// Heading が空でなければ見出し行、そうでなければタスク行です
// HourLabel は時間ラベル名です。int に収まらない時間数では Hours は0になります
type OutlineItem struct {
	Line      int
	Heading   string
	Name      string
	Hours     int
	HourLabel string
}

// IsHeading は見出し行かどうかを返します
func (o OutlineItem) IsHeading() bool {
	return o.Heading != ""
}

// Series は日付(YYYY-MM-DD) → 値 のスナップショット系列です
type Series struct {
	Values map[string]float64
	// StartDate は空の場合、開始日が記録されていないことを示します
	StartDate string
}

// NewSeries は空の系列を作成します
func NewSeries() *Series {
	return &Series{Values: make(map[string]float64)}
}

// Dates は日付を昇順で返します
// NOTE: 文字列ソートのため、ゼロ埋めISO形式の日付でのみ正しく並びます
func (s *Series) Dates() []string {
	dates := make([]string, 0, len(s.Values))
	for d := range s.Values {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Len は系列のエントリ数を返します
func (s *Series) Len() int {
	return len(s.Values)
}

// Max は系列の最大値を返します（空なら0）
func (s *Series) Max() float64 {
	result := 0.0
	first := true
	for _, v := range s.Values {
		if first || v > result {
			result = v
			first = false
		}
	}
	return result
}
