package services

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"trelloburndown/models"
	"trelloburndown/utils"
)

// ChartSeries はグラフに描画する名前付きの系列です
type ChartSeries struct {
	Name   string
	Series *models.Series
}

// Chart はバーンダウンチャートの描画内容です
// 推奨線は最初の系列の最初の点から (Target, 0) まで引きます
type Chart struct {
	Title  string
	YLabel string
	Series []ChartSeries
	Target time.Time
}

// ChartRenderer はバーンダウンチャートを画像ファイルに描画します
type ChartRenderer struct {
	width  vg.Length
	height vg.Length
}

// NewChartRenderer は新しいチャートレンダラーを作成します
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{
		width:  10 * vg.Inch,
		height: 5 * vg.Inch,
	}
}

// SprintTarget は設定されたスプリントの目標日を返します
func SprintTarget(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("目標日の形式が不正です: %w", err)
	}
	return t, nil
}

// ProductTarget は first の年の12月9日を返します
// first 以前になる場合は翌年の12月9日とします
func ProductTarget(first time.Time) time.Time {
	target := time.Date(first.Year(), time.December, 9, 0, 0, 0, 0, time.UTC)
	if !target.After(first) {
		target = time.Date(first.Year()+1, time.December, 9, 0, 0, 0, 0, time.UTC)
	}
	return target
}

// FirstPoint は系列の最初の有効な日付と値を返します
func FirstPoint(series *models.Series) (time.Time, float64, bool) {
	for _, date := range series.Dates() {
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			continue
		}
		return t, series.Values[date], true
	}
	return time.Time{}, 0, false
}

// seriesXYs は系列を (unix秒, 値) の点列に変換します（不正な日付はスキップ）
func seriesXYs(series *models.Series) plotter.XYs {
	xys := make(plotter.XYs, 0, series.Len())
	for _, date := range series.Dates() {
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			utils.LogWarn("不正な日付をスキップします: %s", date)
			continue
		}
		xys = append(xys, plotter.XY{X: float64(t.Unix()), Y: series.Values[date]})
	}
	return xys
}

// Render はチャートを outPath に保存します（形式は拡張子で決まります）
// 最初の系列が空の場合は何も描画せずに nil を返します
func (c *ChartRenderer) Render(chart Chart, outPath string) error {
	if len(chart.Series) == 0 || chart.Series[0].Series == nil || chart.Series[0].Series.Len() == 0 {
		utils.LogWarn("'%s' のデータがないためグラフを描画しません", chart.Title)
		return nil
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = chart.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: DateLayout}
	p.Add(plotter.NewGrid())

	maxValue := 0.0
	for i, cs := range chart.Series {
		if cs.Series == nil || cs.Series.Len() == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(seriesXYs(cs.Series))
		if err != nil {
			return fmt.Errorf("系列 '%s' の作成エラー: %w", cs.Name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(cs.Name, line, points)

		if m := cs.Series.Max(); m > maxValue {
			maxValue = m
		}
	}

	first, startValue, ok := FirstPoint(chart.Series[0].Series)
	if ok && !chart.Target.IsZero() {
		recommended, err := plotter.NewLine(plotter.XYs{
			{X: float64(first.Unix()), Y: startValue},
			{X: float64(chart.Target.Unix()), Y: 0},
		})
		if err != nil {
			return fmt.Errorf("推奨線の作成エラー: %w", err)
		}
		recommended.LineStyle.Color = color.RGBA{R: 220, A: 255}
		recommended.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(recommended)
		p.Legend.Add("Recommended", recommended)
	}

	p.Y.Min = 0
	p.Y.Max = maxValue + 2

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力フォルダ作成エラー: %w", err)
		}
	}

	if err := p.Save(c.width, c.height, outPath); err != nil {
		return fmt.Errorf("グラフ保存エラー: %w", err)
	}

	utils.LogInfo("グラフを保存しました: %s", outPath)
	return nil
}
