package main

import (
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
	clearData := flag.Bool("clear", false, "確認後、スプリントのスナップショットを消去する")
	graph := flag.Bool("graph", false, "スプリントのバーンダウンチャートを描画する")
	productGraph := flag.Bool("product-graph", false, "プロダクトバックログのチャートを描画する")
	updateProduct := flag.Bool("update-product", false, "集計を行わずにプロダクト系列のみを再計算する")
	help := flag.Bool("help", false, "ヘルプを表示する")

	// 短縮形
	flag.BoolVar(productGraph, "product", false, "-product-graph と同じ")
	flag.BoolVar(updateProduct, "update", false, "-update-product と同じ")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}

	// 開始時間の記録
	startTime := time.Now()

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		utils.LogError("設定が不正です: %v", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	utils.LogInfo("Trello バーンダウン集計ツール")

	trelloClient := api.NewTrelloClient(cfg)
	tracker := services.NewTracker(cfg, trelloClient, utils.NewReaderConfirmer(os.Stdin, os.Stdout))

	err = tracker.Run(services.RunOptions{
		Clear:         *clearData,
		Graph:         *graph,
		ProductGraph:  *productGraph,
		UpdateProduct: *updateProduct,
	})
	if err != nil {
		utils.LogError("バーンダウン処理に失敗しました: %v", err)
		os.Exit(1)
	}

	elapsed := time.Since(startTime)
	utils.LogInfo("合計実行時間: %s", elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Trello バーンダウン集計ツール

使用方法:
  %s [オプション]

オプション:
  -clear                        確認後、スプリントのスナップショットを消去する ('YES' と入力)
  -graph                        スプリントのバーンダウンチャートを描画する
  -product-graph, -product      プロダクトバックログのチャートを描画する
  -update-product, -update      集計を行わずにプロダクト系列のみを再計算する
  -help                         このヘルプを表示する

環境変数:
  API_KEY             Trello APIキー (必須)
  TOKEN               Trello APIトークン (必須)
  BOARD_ID            対象ボードID (必須)
  SPRINT_FILE         スプリントのスナップショット (デフォルト: Sprint1 BurnDownChart.txt)
  PRODUCT_FILE        プロダクトのスナップショット (デフォルト: ProductInfo.txt)
  LIST_MATCH          リスト選択ルール prefix / allowlist (デフォルト: prefix)
  LIST_PREFIX         prefix ルールの接頭辞 (デフォルト: "sp ")
  ALLOWED_LISTS       allowlist ルールのリスト名 (カンマ区切り)
  LABEL_NUMBER        ラベル数値の解釈 int / float (デフォルト: int)
  PRODUCT_STRATEGY    プロダクト導出方式 recompute / reconcile (デフォルト: recompute)
  SPRINT_TARGET_DATE  スプリントの目標日 (デフォルト: 2025-12-05)
  CHART_DIR           グラフの出力フォルダ (デフォルト: .)
  HTTP_TIMEOUT        HTTPタイムアウト 例: 30s (デフォルト: なし)
  TRACKER_CONFIG      YAML設定ファイルのパス (任意)

例:
  # 今日の残作業量を記録
  %s

  # 記録してグラフを描画
  %s -graph

  # プロダクト系列のみ再計算してグラフを描画
  %s -update-product -product-graph
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}
