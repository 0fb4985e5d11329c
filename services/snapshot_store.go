package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"trelloburndown/models"
	"trelloburndown/utils"
)

// DateLayout はスナップショットで使う日付形式です
const DateLayout = "2006-01-02"

// startDateKey は開始日センチネル行のキーです
const startDateKey = "StartDate"

// SnapshotStore は "date,value" 形式のスナップショットファイルの読み書きを担当します
// ファイルロックは行わないため、同時実行すると内容が失われる可能性があります
type SnapshotStore struct {
	path string
}

// NewSnapshotStore は新しいスナップショットストアを作成します
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path はファイルパスを返します
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load はスナップショットファイルを読み込みます
// ファイルが存在しない場合は fs.ErrNotExist をラップしたエラーを返します
func (s *SnapshotStore) Load() (*models.Series, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("スナップショットオープンエラー: %w", err)
	}
	defer file.Close()

	return ReadSeries(file)
}

// LoadIfExists はファイルが存在しなければ空の系列を返します
func (s *SnapshotStore) LoadIfExists() (*models.Series, error) {
	series, err := s.Load()
	if errors.Is(err, fs.ErrNotExist) {
		utils.LogInfo("スナップショット '%s' が存在しないため新規作成します", s.path)
		return models.NewSeries(), nil
	}
	return series, err
}

// Save は系列全体でファイルを書き換えます（追記ではありません）
func (s *SnapshotStore) Save(series *models.Series) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("スナップショット作成エラー: %w", err)
	}
	defer file.Close()

	if err := WriteSeries(file, series); err != nil {
		return err
	}

	utils.LogInfo("スナップショット '%s' に書き込みました: %d 件", s.path, series.Len())
	return nil
}

// ReadSeries は r から系列を読み込みます
// 不正な日付の行はスキップし、不正な数値は0として扱います
func ReadSeries(r io.Reader) (*models.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	series := models.NewSeries()
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				utils.LogWarn("行 %d: 解析できないためスキップします: %v", lineNum, err)
				continue
			}
			return nil, fmt.Errorf("スナップショット読み込みエラー: %w", err)
		}

		key := strings.TrimSpace(record[0])
		value := ""
		if len(record) > 1 {
			value = strings.TrimSpace(record[1])
		}

		if key == startDateKey {
			if _, err := time.Parse(DateLayout, value); err != nil {
				utils.LogWarn("行 %d: 開始日 '%s' が不正なため無視します", lineNum, value)
				continue
			}
			series.StartDate = value
			continue
		}

		if _, err := time.Parse(DateLayout, key); err != nil {
			utils.LogWarn("行 %d: 不正な日付 '%s' をスキップします", lineNum, key)
			continue
		}

		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			utils.LogWarn("行 %d: 数値 '%s' を解析できないため0とします", lineNum, value)
			num = 0
		}
		series.Values[key] = num
	}

	return series, nil
}

// WriteSeries は系列を日付昇順で書き出し、開始日があれば最後に追記します
func WriteSeries(w io.Writer, series *models.Series) error {
	writer := csv.NewWriter(w)

	for _, date := range series.Dates() {
		if err := writer.Write([]string{date, FormatValue(series.Values[date])}); err != nil {
			return fmt.Errorf("行書き込みエラー: %w", err)
		}
	}

	if series.StartDate != "" {
		if err := writer.Write([]string{startDateKey, series.StartDate}); err != nil {
			return fmt.Errorf("開始日書き込みエラー: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV書き込み完了エラー: %w", err)
	}
	return nil
}

// FormatValue は整数値なら整数として、それ以外は最短の小数表記で返します
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
