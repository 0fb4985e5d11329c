package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"trelloburndown/api"
	"trelloburndown/config"
	"trelloburndown/services"
	"trelloburndown/utils"
)

func main() {
	// コマンドラインフラグの定義
	strategy := flag.String("strategy", "", "導出方式 recompute / reconcile（指定しない場合は環境変数から取得）")
	sprintFile := flag.String("sprint", "", "スプリントのスナップショット（指定しない場合は環境変数から取得）")
	output := flag.String("output", "", "プロダクトのスナップショット（指定しない場合は環境変数から取得）")
	graph := flag.Bool("graph", false, "プロダクトバックログのチャートを描画する")
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}

	// 開始時間の記録
	startTime := time.Now()

	utils.LogInfo("プロダクトバックログ導出ツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// コマンドラインで指定された場合、設定を上書き
	if *strategy != "" {
		cfg.ProductStrategy = *strategy
	}
	if *sprintFile != "" {
		cfg.SprintFile = *sprintFile
	}
	if *output != "" {
		cfg.ProductFile = *output
	}

	if err := cfg.Validate(); err != nil {
		utils.LogError("設定が不正です: %v", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	utils.LogInfo("導出方式: %s, スプリント: %s, 出力: %s", cfg.ProductStrategy, cfg.SprintFile, cfg.ProductFile)

	tracker := services.NewTracker(cfg, api.NewTrelloClient(cfg), utils.StaticConfirmer(false))

	if err := run(tracker, cfg, *graph, time.Now()); err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}

	elapsed := time.Since(startTime)
	utils.LogInfo("処理時間: %s", elapsed)
}

// run はプロダクト系列を導出し、必要ならチャートを描画します
// スプリント系列が空の場合は何もせず正常終了します
func run(tracker *services.Tracker, cfg *config.Config, graph bool, today time.Time) error {
	product, err := tracker.Deriver().Run(today)
	if errors.Is(err, services.ErrEmptySeries) {
		utils.LogInfo("スプリント系列が空のため処理を終了します")
		return nil
	}
	if err != nil {
		return fmt.Errorf("プロダクトバックログ導出エラー: %w", err)
	}
	utils.LogInfo("%s に %d 行を書き込みました", cfg.ProductFile, product.Len())

	if graph {
		if err := tracker.RenderProductChart(); err != nil {
			utils.LogError("グラフ描画エラー: %v", err)
		}
	}
	return nil
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
プロダクトバックログ導出ツール

使用方法:
  %s [オプション]

オプション:
  -strategy 方式       recompute または reconcile
  -sprint ファイル     スプリントのスナップショット
  -output ファイル     プロダクトのスナップショット
  -graph              プロダクトバックログのチャートを描画する
  -help               このヘルプを表示する

導出方式:
  recompute  ボード全体の数値ラベル合計 (完了系リストを除く) + スプリント初日の値から始め、
             スプリントの減少分を日ごとに差し引きます。今日まで最後の値で延長します。
  reconcile  既存のプロダクト系列の開始日の値を基準に、
             product = 基準値 - (スプリント開始値 - スプリント値) で各日を調整します。

環境変数:
  API_KEY, TOKEN, BOARD_ID   Trello認証情報とボードID (必須)
  SPRINT_FILE                (デフォルト: Sprint1 BurnDownChart.txt)
  PRODUCT_FILE               (デフォルト: ProductInfo.txt)
  PRODUCT_STRATEGY           (デフォルト: recompute)
`, os.Args[0])
}
