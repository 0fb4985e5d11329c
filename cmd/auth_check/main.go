package main

import (
	"flag"
	"fmt"
	"os"

	"trelloburndown/api"
	"trelloburndown/config"
	"trelloburndown/utils"
)

func main() {
	// ヘルプフラグの定義
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}

	utils.LogInfo("Trello認証確認ツール")

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

	trelloClient := api.NewTrelloClient(cfg)

	// 認証チェック
	utils.LogInfo("Trello APIの認証を確認しています...")
	if err := trelloClient.CheckAuth(); err != nil {
		utils.LogError("Trello認証エラー: %v", err)
		utils.LogError("認証情報を確認してください。")
		os.Exit(1)
	}

	// ボードへのアクセス確認
	lists, err := trelloClient.GetLists(cfg.BoardID)
	if err != nil {
		utils.LogError("ボード %s にアクセスできません: %v", cfg.BoardID, err)
		os.Exit(1)
	}

	utils.LogInfo("Trello認証成功！ 接続先: %s", cfg.BaseURL)
	utils.LogInfo("ボード %s のリスト数: %d", cfg.BoardID, len(lists))
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Trello認証確認ツール

使用方法:
  %s [オプション]

オプション:
  -help               このヘルプを表示する

環境変数:
  API_KEY             Trello APIキー (必須)
  TOKEN               Trello APIトークン (必須)
  BOARD_ID            対象ボードID (必須)

説明:
  このツールはTrello APIの認証情報とボードIDが正しく設定されているかを確認します。
  認証が成功すれば、他のツールも正常に動作する可能性が高いです。
`, os.Args[0])
}
