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
	cardsFile := flag.String("file", "", "アウトラインファイルのパス（指定しない場合は環境変数から取得）")
	listName := flag.String("list", "", "カードを作成するリスト名（指定しない場合は環境変数から取得）")
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

	utils.LogInfo("Trello カードインポートツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// コマンドラインで指定された場合、設定を上書き
	if *cardsFile != "" {
		cfg.CardsFile = *cardsFile
		utils.LogInfo("入力ファイルを指定: %s", cfg.CardsFile)
	}
	if *listName != "" {
		cfg.ListName = *listName
		utils.LogInfo("リストを指定: %s", cfg.ListName)
	}

	if err := cfg.Validate(); err != nil {
		utils.LogError("設定が不正です: %v", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	// アウトラインファイルの存在確認
	if _, err := os.Stat(cfg.CardsFile); os.IsNotExist(err) {
		utils.LogError("アウトラインファイルが見つかりません: %s", cfg.CardsFile)
		os.Exit(1)
	}

	importer := services.NewCardImporter(api.NewTrelloClient(cfg))
	result, err := importer.ImportFile(cfg.CardsFile, cfg.BoardID, cfg.ListName)
	if err != nil {
		utils.LogError("カードインポートエラー: %v", err)
		os.Exit(1)
	}

	// 処理時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("カードインポートが完了しました: %d 件のカードを作成しました。処理時間: %s", result.CardsCreated, elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Trello カードインポートツール

使用方法:
  %s [オプション]

オプション:
  -file ファイル       アウトラインファイル
  -list リスト名       カードを作成するリスト
  -help               このヘルプを表示する

環境変数:
  API_KEY             Trello APIキー (必須)
  TOKEN               Trello APIトークン (必須)
  BOARD_ID            対象ボードID (必須)
  CARDS_FILE          アウトラインファイル (デフォルト: cards.txt)
  LIST_NAME           カードを作成するリスト (デフォルト: General BackLog)

アウトライン形式:
  Design
  Task A (2 hrs)
  Task B (4 hrs)

  "名前 (N hrs)" の行はカードになり、時間ラベル (1=green, 2=yellow, 4=orange, その他=red) が付きます。
  それ以外の行は見出しとなり、青いラベルが作成されて以降のカードに付与されます。
`, os.Args[0])
}
