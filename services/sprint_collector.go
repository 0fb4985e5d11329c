package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trelloburndown/config"
	"trelloburndown/models"
	"trelloburndown/utils"
)

// ListMatcher は集計対象のリストかどうかを判定します
type ListMatcher func(name string) bool

// LabelParser はラベル名を数値として解釈します（数値でなければ false）
type LabelParser func(name string) (float64, bool)

// PrefixMatcher は大文字小文字を区別せず prefix で始まるリストにマッチします
func PrefixMatcher(prefix string) ListMatcher {
	lower := strings.ToLower(prefix)
	return func(name string) bool {
		return strings.HasPrefix(strings.ToLower(name), lower)
	}
}

// AllowListMatcher は名前が完全一致するリストにマッチします
func AllowListMatcher(names []string) ListMatcher {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := allowed[name]
		return ok
	}
}

// IntLabelParser は整数のラベル名のみを数値として扱います
func IntLabelParser(name string) (float64, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(name))
	if err != nil {
		return 0, false
	}
	return float64(v), true
}

// FloatLabelParser は小数を含むラベル名を数値として扱います
func FloatLabelParser(name string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(name), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MatcherFromConfig は設定からリスト選択ルールを作成します
func MatcherFromConfig(cfg *config.Config) ListMatcher {
	if cfg.ListMatch == config.ListMatchAllowList {
		return AllowListMatcher(cfg.AllowedLists)
	}
	return PrefixMatcher(cfg.ListPrefix)
}

// ParserFromConfig は設定からラベル数値の解釈方法を作成します
func ParserFromConfig(cfg *config.Config) LabelParser {
	if cfg.LabelNumber == config.LabelNumberFloat {
		return FloatLabelParser
	}
	return IntLabelParser
}

// CardLabelSum はカードの数値ラベルの合計を返します
func CardLabelSum(card models.Card, parse LabelParser) float64 {
	sum := 0.0
	for _, label := range card.Labels {
		if v, ok := parse(label.Name); ok {
			sum += v
		}
	}
	return sum
}

// SprintBoard はスプリント集計に必要なボード操作です
type SprintBoard interface {
	GetLists(boardID string) ([]models.List, error)
	GetListCards(listID string) ([]models.Card, error)
}

// SprintCollector はスプリントリストの残作業量を集計します
type SprintCollector struct {
	board   SprintBoard
	boardID string
	match   ListMatcher
	parse   LabelParser
}

// NewSprintCollector は新しいスプリントコレクターを作成します
func NewSprintCollector(board SprintBoard, boardID string, match ListMatcher, parse LabelParser) *SprintCollector {
	return &SprintCollector{
		board:   board,
		boardID: boardID,
		match:   match,
		parse:   parse,
	}
}

// Total は対象リストの全カードの数値ラベル合計を返します
// カード取得に失敗したリストはスキップします
func (s *SprintCollector) Total() (float64, error) {
	lists, err := s.board.GetLists(s.boardID)
	if err != nil {
		return 0, fmt.Errorf("スプリントリスト取得エラー: %w", err)
	}

	total := 0.0
	for _, lst := range lists {
		if !s.match(lst.Name) {
			continue
		}

		cards, err := s.board.GetListCards(lst.ID)
		if err != nil {
			utils.LogWarn("リスト '%s' のカード取得に失敗したためスキップします: %v", lst.Name, err)
			continue
		}

		listSum := 0.0
		for _, card := range cards {
			listSum += CardLabelSum(card, s.parse)
		}
		utils.LogDebug("リスト '%s': カード=%d, 残作業=%s", lst.Name, len(cards), FormatValue(listSum))
		total += listSum
	}

	return total, nil
}

// Collect は今日の残作業量を集計して系列に記録します
// 同じ日に再実行した場合は上書きし、開始日が未設定なら今日を開始日とします
func (s *SprintCollector) Collect(series *models.Series, today time.Time) (float64, error) {
	total, err := s.Total()
	if err != nil {
		return 0, err
	}

	date := today.Format(DateLayout)
	series.Values[date] = total
	if series.StartDate == "" {
		series.StartDate = date
	}

	utils.LogInfo("%s の残作業量: %s", date, FormatValue(total))
	return total, nil
}
