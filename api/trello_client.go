package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"trelloburndown/config"
	"trelloburndown/models"
	"trelloburndown/utils"
)

var (
	// ErrUnexpectedStatus はAPIが200以外を返した場合のエラーです
	ErrUnexpectedStatus = errors.New("予期しないHTTPステータス")
	// ErrListNotFound は指定名のリストがボードに存在しない場合のエラーです
	ErrListNotFound = errors.New("リストが見つかりません")
)

// TrelloClient はTrello REST APIとのやり取りを処理します
type TrelloClient struct {
	config *config.Config
	client *http.Client
}

// NewTrelloClient は新しいTrelloクライアントを作成します
func NewTrelloClient(cfg *config.Config) *TrelloClient {
	return &TrelloClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// endpoint は認証パラメータ(key, token)付きのURLを組み立てます
func (t *TrelloClient) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", t.config.APIKey)
	params.Set("token", t.config.Token)
	return fmt.Sprintf("%s%s?%s", t.config.BaseURL, path, params.Encode())
}

// do はリクエストを送信し、200の場合にレスポンスを out にデコードします
func (t *TrelloClient) do(method, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequest(method, t.endpoint(path, params), nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成エラー: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		utils.LogWarn("%s %s 失敗: %d %s", method, path, resp.StatusCode, string(body))
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	return nil
}

// CheckAuth はTrello認証をチェックします
func (t *TrelloClient) CheckAuth() error {
	var me struct {
		Username string `json:"username"`
	}
	if err := t.do(http.MethodGet, "/members/me", nil, &me); err != nil {
		return fmt.Errorf("認証失敗: %w", err)
	}
	utils.LogDebug("認証ユーザー: %s", me.Username)
	return nil
}

// GetLists はボード上のリスト一覧を取得します
func (t *TrelloClient) GetLists(boardID string) ([]models.List, error) {
	var lists []models.List
	if err := t.do(http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/lists", nil, &lists); err != nil {
		return nil, fmt.Errorf("リスト取得失敗: %w", err)
	}
	return lists, nil
}

// FindListID は名前が完全一致するリストのIDを返します
func (t *TrelloClient) FindListID(boardID, listName string) (string, error) {
	lists, err := t.GetLists(boardID)
	if err != nil {
		return "", err
	}

	for _, lst := range lists {
		if lst.Name == listName {
			return lst.ID, nil
		}
	}

	utils.LogError("リスト '%s' がボード %s に見つかりません", listName, boardID)
	return "", fmt.Errorf("%w: %s", ErrListNotFound, listName)
}

// GetListCards はリスト内のカード一覧を取得します
func (t *TrelloClient) GetListCards(listID string) ([]models.Card, error) {
	var cards []models.Card
	if err := t.do(http.MethodGet, "/lists/"+url.PathEscape(listID)+"/cards", nil, &cards); err != nil {
		return nil, fmt.Errorf("カード取得失敗: %w", err)
	}
	return cards, nil
}

// GetBoardCards はボード上の全カードを取得します（name, labels, idList のみ）
func (t *TrelloClient) GetBoardCards(boardID string) ([]models.Card, error) {
	params := url.Values{}
	params.Set("fields", "name,labels,idList")

	var cards []models.Card
	if err := t.do(http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/cards", params, &cards); err != nil {
		return nil, fmt.Errorf("ボードカード取得失敗: %w", err)
	}
	return cards, nil
}

// GetBoardLabels はボード上のラベル一覧を取得します
func (t *TrelloClient) GetBoardLabels(boardID string) ([]models.Label, error) {
	var labels []models.Label
	if err := t.do(http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/labels", nil, &labels); err != nil {
		return nil, fmt.Errorf("ラベル取得失敗: %w", err)
	}
	return labels, nil
}

// CreateLabel はボードに新しいラベルを作成します
func (t *TrelloClient) CreateLabel(boardID, name, color string) (models.Label, error) {
	params := url.Values{}
	params.Set("idBoard", boardID)
	params.Set("name", name)
	params.Set("color", color)

	var label models.Label
	if err := t.do(http.MethodPost, "/labels", params, &label); err != nil {
		return models.Label{}, fmt.Errorf("ラベル作成失敗: %w", err)
	}
	return label, nil
}

// GetOrCreateLabel は同名のラベルがあればそれを返し、なければ作成します
// 取得と作成の間に排他制御はないため、同時実行すると重複する可能性があります
func (t *TrelloClient) GetOrCreateLabel(boardID, name, color string) (models.Label, error) {
	labels, err := t.GetBoardLabels(boardID)
	if err != nil {
		utils.LogWarn("ラベル一覧の取得に失敗したため作成を試みます: %v", err)
	}

	for _, label := range labels {
		if label.Name == name {
			return label, nil
		}
	}

	return t.CreateLabel(boardID, name, color)
}

// CreateCard はリストに新しいカードを作成します
func (t *TrelloClient) CreateCard(listID, name string) (models.Card, error) {
	params := url.Values{}
	params.Set("idList", listID)
	params.Set("name", name)

	var card models.Card
	if err := t.do(http.MethodPost, "/cards", params, &card); err != nil {
		return models.Card{}, fmt.Errorf("カード作成失敗: %w", err)
	}
	return card, nil
}

// AddLabelToCard はカードにラベルを付与します
func (t *TrelloClient) AddLabelToCard(cardID, labelID string) error {
	params := url.Values{}
	params.Set("value", labelID)

	if err := t.do(http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/idLabels", params, nil); err != nil {
		return fmt.Errorf("ラベル付与失敗: %w", err)
	}
	return nil
}
