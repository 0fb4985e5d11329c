package services

import (
	"fmt"
	"io"
	"os"
	"time"

	"trelloburndown/models"
	"trelloburndown/utils"
)

// CardBoard はカードインポートに必要なボード操作です
type CardBoard interface {
	FindListID(boardID, listName string) (string, error)
	CreateCard(listID, name string) (models.Card, error)
	CreateLabel(boardID, name, color string) (models.Label, error)
	GetOrCreateLabel(boardID, name, color string) (models.Label, error)
	AddLabelToCard(cardID, labelID string) error
}

// ImportResult はインポートの集計結果です
type ImportResult struct {
	CardsCreated   int
	HeadingLabels  int
	LabelsAttached int
	Failures       int
}

// CardImporter はアウトラインファイルからカードとラベルを作成します
type CardImporter struct {
	board CardBoard
}

// NewCardImporter は新しいカードインポーターを作成します
func NewCardImporter(board CardBoard) *CardImporter {
	return &CardImporter{board: board}
}

// ImportFile はファイルを開いて Import を実行します
func (c *CardImporter) ImportFile(path, boardID, listName string) (ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("アウトラインファイルオープンエラー: %w", err)
	}
	defer file.Close()

	return c.Import(file, boardID, listName)
}

// Import はアウトラインの各行からカードを作成し、時間ラベルと見出しラベルを付与します
func (c *CardImporter) Import(r io.Reader, boardID, listName string) (ImportResult, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "カードインポート")

	var result ImportResult

	listID, err := c.board.FindListID(boardID, listName)
	if err != nil {
		utils.LogError("有効なリストIDがないため処理を続行できません")
		return result, err
	}

	items, err := ParseOutline(r)
	if err != nil {
		return result, err
	}

	var currentHeading, headingLabelID string

	for _, item := range items {
		if item.IsHeading() {
			currentHeading = item.Heading
			// 見出しごとに必ず新しいラベルを作成する（重複排除しない）
			label, err := c.board.CreateLabel(boardID, currentHeading, HeadingColor)
			if err != nil {
				headingLabelID = ""
				result.Failures++
				utils.LogError("見出しラベル作成失敗 '%s': %v", currentHeading, err)
				continue
			}
			headingLabelID = label.ID
			result.HeadingLabels++
			utils.LogInfo("見出しラベルを作成しました: %s (%s)", currentHeading, headingLabelID)
			continue
		}

		card, err := c.board.CreateCard(listID, item.Name)
		if err != nil {
			result.Failures++
			utils.LogError("行 %d: カード作成失敗 '%s': %v", item.Line, item.Name, err)
			continue
		}
		result.CardsCreated++
		utils.LogInfo("カードを作成しました: %s", item.Name)

		hourName := item.HourLabel
		hourLabel, err := c.board.GetOrCreateLabel(boardID, hourName, HourColor(item.Hours))
		if err != nil {
			result.Failures++
			utils.LogError("時間ラベル取得失敗 '%s': %v", hourName, err)
		} else {
			c.attach(&result, card, hourLabel.ID, hourName)
		}

		if headingLabelID != "" {
			c.attach(&result, card, headingLabelID, currentHeading)
		}
	}

	utils.LogInfo("インポート完了: カード=%d, 見出しラベル=%d, ラベル付与=%d, 失敗=%d",
		result.CardsCreated, result.HeadingLabels, result.LabelsAttached, result.Failures)
	return result, nil
}

// attach はカードにラベルを付与し、結果を集計します
func (c *CardImporter) attach(result *ImportResult, card models.Card, labelID, labelName string) {
	if err := c.board.AddLabelToCard(card.ID, labelID); err != nil {
		result.Failures++
		utils.LogError("ラベル '%s' をカード %s に付与できませんでした: %v", labelName, card.Name, err)
		return
	}
	result.LabelsAttached++
	utils.LogInfo("ラベル '%s' をカード %s に付与しました", labelName, card.Name)
}
