package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmPhrase は破壊的操作の確認に必要な入力です（大文字小文字を区別）
const ConfirmPhrase = "YES"

// Confirmer は確認プロンプトを表示し、承認されたかどうかを返します
type Confirmer func(prompt string) bool

// NewReaderConfirmer は r から1行読み込み、ConfirmPhrase と完全一致した場合のみ承認する Confirmer を作成します
func NewReaderConfirmer(r io.Reader, w io.Writer) Confirmer {
	reader := bufio.NewReader(r)
	return func(prompt string) bool {
		fmt.Fprint(w, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		return strings.TrimRight(line, "\r\n") == ConfirmPhrase
	}
}

// StaticConfirmer は常に同じ答えを返す Confirmer です
func StaticConfirmer(answer bool) Confirmer {
	return func(string) bool {
		return answer
	}
}
