package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trelloburndown/config"
	"trelloburndown/models"
	"trelloburndown/utils"
)

var (
	// ErrMissingStartValue はスプリント開始日の値がスプリント系列またはプロダクト系列にない場合のエラーです
	ErrMissingStartValue = errors.New("開始日の値が見つかりません")
	// ErrEmptySeries はスプリント系列が空の場合のエラーです
	ErrEmptySeries = errors.New("スプリント系列が空です")
)

// finishedListWords を名前に含むリストはプロダクト合計から除外します
var finishedListWords = []string{"finish", "done", "complete"}

// IsFinishedList は完了系のリスト名かどうかを返します（部分一致、大文字小文字を区別しない）
func IsFinishedList(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range finishedListWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ProductBoard はプロダクトバックログ導出に必要なボード操作です
type ProductBoard interface {
	GetLists(boardID string) ([]models.List, error)
	GetBoardCards(boardID string) ([]models.Card, error)
}

// ProductDeriver はスプリント系列からプロダクトバックログ系列を導出します
type ProductDeriver struct {
	board    ProductBoard
	boardID  string
	parse    LabelParser
	strategy string
	sprint   *SnapshotStore
	product  *SnapshotStore
}

// NewProductDeriver は新しいプロダクトバックログ導出サービスを作成します
func NewProductDeriver(cfg *config.Config, board ProductBoard, sprint, product *SnapshotStore) *ProductDeriver {
	return &ProductDeriver{
		board:    board,
		boardID:  cfg.BoardID,
		parse:    ParserFromConfig(cfg),
		strategy: cfg.ProductStrategy,
		sprint:   sprint,
		product:  product,
	}
}

// SetStrategy は導出方式を上書きします
func (p *ProductDeriver) SetStrategy(strategy string) {
	p.strategy = strategy
}

// BoardLabelSum は完了系リストを除くボード全体の数値ラベル合計を返します
func (p *ProductDeriver) BoardLabelSum() (float64, error) {
	lists, err := p.board.GetLists(p.boardID)
	if err != nil {
		return 0, fmt.Errorf("ボードリスト取得エラー: %w", err)
	}

	excluded := make(map[string]bool)
	for _, lst := range lists {
		if IsFinishedList(lst.Name) {
			excluded[lst.ID] = true
		}
	}

	cards, err := p.board.GetBoardCards(p.boardID)
	if err != nil {
		return 0, fmt.Errorf("ボードカード取得エラー: %w", err)
	}

	total := 0.0
	for _, card := range cards {
		if excluded[card.IDList] {
			continue
		}
		total += CardLabelSum(card, p.parse)
	}

	return total, nil
}

// Recompute はボード合計とスプリント系列からプロダクト系列を再計算します（方式A）
// 最初の日はボード合計 + スプリント初日の値とし、以降はスプリントの減少分を差し引きます
// スプリント系列の最終日が today より前なら、最後の値で today まで毎日延長します
func Recompute(boardSum float64, sprint *models.Series, today time.Time) *models.Series {
	product := models.NewSeries()
	product.StartDate = sprint.StartDate

	dates := sprint.Dates()
	if len(dates) == 0 {
		return product
	}

	current := boardSum + sprint.Values[dates[0]]
	product.Values[dates[0]] = current

	for i := 1; i < len(dates); i++ {
		delta := sprint.Values[dates[i-1]] - sprint.Values[dates[i]]
		current -= delta
		product.Values[dates[i]] = current
	}

	last, err := time.Parse(DateLayout, dates[len(dates)-1])
	if err != nil {
		return product
	}
	end, _ := time.Parse(DateLayout, today.Format(DateLayout))
	for d := last.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		product.Values[d.Format(DateLayout)] = current
	}

	return product
}

// Reconcile は既存のプロダクト系列をスプリント系列に合わせて調整します（方式B）
// 各スプリント日付について product = original - (sprintStart - sprint) とします
func Reconcile(product, sprint *models.Series) (*models.Series, error) {
	start := sprint.StartDate
	if start == "" {
		return nil, fmt.Errorf("%w: スプリント開始日が未設定です", ErrMissingStartValue)
	}

	sprintStart, ok := sprint.Values[start]
	if !ok {
		return nil, fmt.Errorf("%w: スプリント系列に %s がありません", ErrMissingStartValue, start)
	}

	original, ok := product.Values[start]
	if !ok {
		return nil, fmt.Errorf("%w: プロダクト系列に %s がありません", ErrMissingStartValue, start)
	}

	result := models.NewSeries()
	result.StartDate = product.StartDate
	if result.StartDate == "" {
		result.StartDate = start
	}
	for date, v := range product.Values {
		result.Values[date] = v
	}

	// プロダクト系列にない日付も同じ式で追加される
	for _, date := range sprint.Dates() {
		result.Values[date] = original - (sprintStart - sprint.Values[date])
	}

	return result, nil
}

// Run はスプリントファイルを読み込み、設定された方式でプロダクトファイルを更新します
// スプリント系列が空の場合は何も書き込まずに ErrEmptySeries を返します
func (p *ProductDeriver) Run(today time.Time) (*models.Series, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "プロダクトバックログ更新")

	sprint, err := p.sprint.Load()
	if err != nil {
		return nil, fmt.Errorf("スプリントファイル読み込みエラー: %w", err)
	}

	if sprint.Len() == 0 {
		utils.LogWarn("スプリント '%s' にデータがないため何も書き込みません", p.sprint.Path())
		return nil, ErrEmptySeries
	}

	var product *models.Series
	switch p.strategy {
	case config.StrategyReconcile:
		existing, err := p.product.LoadIfExists()
		if err != nil {
			return nil, fmt.Errorf("プロダクトファイル読み込みエラー: %w", err)
		}
		product, err = Reconcile(existing, sprint)
		if err != nil {
			utils.LogError("プロダクト系列の調整を中止します: %v", err)
			return nil, err
		}
	default:
		boardSum, err := p.BoardLabelSum()
		if err != nil {
			return nil, err
		}
		utils.LogInfo("プロダクト合計（ボード上の数値ラベル合計）: %s", FormatValue(boardSum))
		product = Recompute(boardSum, sprint, today)
	}

	if err := p.product.Save(product); err != nil {
		return nil, err
	}

	return product, nil
}
