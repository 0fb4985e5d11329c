package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"trelloburndown/config"
	"trelloburndown/models"
	"trelloburndown/utils"
)

// グラフの出力ファイル名
const (
	SprintChartFile  = "sprint_burndown.png"
	ProductChartFile = "product_burndown.png"
)

// TrackerBoard はバーンダウン処理全体で使うボード操作です
type TrackerBoard interface {
	SprintBoard
	GetBoardCards(boardID string) ([]models.Card, error)
}

// RunOptions は1回の実行で行う処理を指定します
type RunOptions struct {
	Clear         bool
	Graph         bool
	ProductGraph  bool
	UpdateProduct bool
}

// Tracker はスプリント集計・プロダクト導出・グラフ描画を順に実行します
type Tracker struct {
	config       *config.Config
	collector    *SprintCollector
	deriver      *ProductDeriver
	renderer     *ChartRenderer
	sprintStore  *SnapshotStore
	productStore *SnapshotStore
	confirm      utils.Confirmer
	now          func() time.Time
}

// NewTracker は新しいトラッカーを作成します
func NewTracker(cfg *config.Config, board TrackerBoard, confirm utils.Confirmer) *Tracker {
	sprintStore := NewSnapshotStore(cfg.SprintFile)
	productStore := NewSnapshotStore(cfg.ProductFile)

	return &Tracker{
		config:       cfg,
		collector:    NewSprintCollector(board, cfg.BoardID, MatcherFromConfig(cfg), ParserFromConfig(cfg)),
		deriver:      NewProductDeriver(cfg, board, sprintStore, productStore),
		renderer:     NewChartRenderer(),
		sprintStore:  sprintStore,
		productStore: productStore,
		confirm:      confirm,
		now:          time.Now,
	}
}

// Deriver はプロダクトバックログ導出サービスを返します
func (t *Tracker) Deriver() *ProductDeriver {
	return t.deriver
}

// ClearSprint は確認後にスプリントファイルを空にして開始日を今日にします
// 承認されなかった場合はファイルを変更せず false を返します
func (t *Tracker) ClearSprint() (bool, error) {
	if !t.confirm("Are you sure you want to clear all data? Type 'YES' (Case Sensitive) to confirm: ") {
		utils.LogInfo("データ消去をキャンセルしました")
		return false, nil
	}

	series := models.NewSeries()
	series.StartDate = t.now().Format(DateLayout)
	if err := t.sprintStore.Save(series); err != nil {
		return false, fmt.Errorf("スプリントファイル消去エラー: %w", err)
	}

	utils.LogInfo("データを消去しました")
	return true, nil
}

// CollectSprint はスプリントファイルを読み込み、今日の値を集計して書き戻します
func (t *Tracker) CollectSprint() (*models.Series, error) {
	series, err := t.sprintStore.LoadIfExists()
	if err != nil {
		return nil, err
	}

	if _, err := t.collector.Collect(series, t.now()); err != nil {
		return nil, err
	}

	if err := t.sprintStore.Save(series); err != nil {
		return nil, err
	}

	return series, nil
}

// UpdateProduct はプロダクト系列を再計算します
func (t *Tracker) UpdateProduct() error {
	_, err := t.deriver.Run(t.now())
	if errors.Is(err, ErrEmptySeries) {
		return nil
	}
	return err
}

// RenderSprintChart はスプリントのバーンダウンチャートを描画します
func (t *Tracker) RenderSprintChart(series *models.Series) error {
	target, err := SprintTarget(t.config.SprintTargetDate)
	if err != nil {
		return err
	}

	return t.renderer.Render(Chart{
		Title:  "Burn Down Chart",
		YLabel: "Cards Left to Do",
		Series: []ChartSeries{{Name: "Sprint", Series: series}},
		Target: target,
	}, filepath.Join(t.config.ChartDir, SprintChartFile))
}

// RenderProductChart はプロダクトバックログのチャートを描画します（スプリント系列も重ねて表示）
func (t *Tracker) RenderProductChart() error {
	product, err := t.productStore.LoadIfExists()
	if err != nil {
		return err
	}

	chart := Chart{
		Title:  "Product Backlog Burn Down",
		YLabel: "Product Backlog",
		Series: []ChartSeries{{Name: "Product Backlog", Series: product}},
	}
	if first, _, ok := FirstPoint(product); ok {
		chart.Target = ProductTarget(first)
	}

	if sprint, err := t.sprintStore.LoadIfExists(); err == nil && sprint.Len() > 0 {
		chart.Series = append(chart.Series, ChartSeries{Name: "Sprint", Series: sprint})
	}

	return t.renderer.Render(chart, filepath.Join(t.config.ChartDir, ProductChartFile))
}

// Run は指定されたオプションに従って処理全体を実行します
func (t *Tracker) Run(opts RunOptions) error {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "バーンダウン処理全体")

	if opts.Clear {
		// 消去後、またはキャンセル時はここで終了
		_, err := t.ClearSprint()
		return err
	}

	var sprint *models.Series
	if opts.UpdateProduct {
		utils.LogInfo("プロダクト系列のみを更新します")
		if err := t.UpdateProduct(); err != nil {
			// 導出の失敗はこのステップのみ中止する
			utils.LogError("プロダクト系列の更新に失敗しました: %v", err)
		}
	} else {
		series, err := t.CollectSprint()
		if err != nil {
			return fmt.Errorf("スプリント集計エラー: %w", err)
		}
		sprint = series
	}

	if opts.Graph {
		if sprint == nil {
			loaded, err := t.sprintStore.LoadIfExists()
			if err != nil {
				return err
			}
			sprint = loaded
		}
		if err := t.RenderSprintChart(sprint); err != nil {
			utils.LogError("スプリントグラフの描画に失敗しました: %v", err)
		}
	}

	if opts.ProductGraph {
		if err := t.RenderProductChart(); err != nil {
			utils.LogError("プロダクトグラフの描画に失敗しました: %v", err)
		}
	}

	utils.LogInfo("バーンダウン処理が完了しました")
	return nil
}
