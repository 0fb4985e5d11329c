package services

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"trelloburndown/models"
)

// taskPattern は "タスク名 (N hrs)" / "タスク名 (N hr)" 形式の行にマッチします
var taskPattern = regexp.MustCompile(`^(.*)\((\d+)\s*hrs?\)$`)

// 見出しラベルの色
const HeadingColor = "blue"

// ParseOutline はアウトラインを読み込み、見出し行とタスク行に分解します
// 空行は無視し、タスク形式にマッチしない行はすべて見出しとして扱います
func ParseOutline(r io.Reader) ([]models.OutlineItem, error) {
	var items []models.OutlineItem

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := taskPattern.FindStringSubmatch(line); m != nil {
			label := strings.TrimLeft(m[2], "0")
			if label == "" {
				label = "0"
			}
			// 桁あふれしても行はタスクのまま扱う
			hours, err := strconv.Atoi(label)
			if err != nil {
				hours = 0
			}
			items = append(items, models.OutlineItem{
				Line:      lineNum,
				Name:      strings.TrimSpace(m[1]),
				Hours:     hours,
				HourLabel: label,
			})
			continue
		}

		items = append(items, models.OutlineItem{Line: lineNum, Heading: line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("アウトライン読み込みエラー: %w", err)
	}

	return items, nil
}

// HourColor は時間数からラベル色を決定します
func HourColor(hours int) string {
	switch hours {
	case 1:
		return "green"
	case 2:
		return "yellow"
	case 4:
		return "orange"
	default:
		return "red"
	}
}
