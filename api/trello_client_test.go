package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trelloburndown/config"
	"trelloburndown/models"
)

// fakeTrello は記録付きの簡易Trelloサーバーです
type fakeTrello struct {
	t        *testing.T
	mu       sync.Mutex
	requests []*http.Request
	labels   []models.Label
	status   int
}

func (f *fakeTrello) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	q := r.URL.Query()
	if q.Get("key") != "test-key" || q.Get("token") != "test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
		return
	}

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte("board not found"))
		return
	}

	var body interface{}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/members/me":
		body = map[string]string{"username": "tester"}
	case r.Method == http.MethodGet && r.URL.Path == "/boards/b1/lists":
		body = []models.List{{ID: "l1", Name: "General BackLog"}, {ID: "l2", Name: "SP Tyler"}}
	case r.Method == http.MethodGet && r.URL.Path == "/lists/l2/cards":
		body = []models.Card{{ID: "c1", Name: "Task", Labels: []models.Label{{ID: "x", Name: "2"}}}}
	case r.Method == http.MethodGet && r.URL.Path == "/boards/b1/cards":
		body = []models.Card{{ID: "c1", IDList: "l2"}}
	case r.Method == http.MethodGet && r.URL.Path == "/boards/b1/labels":
		body = f.labels
	case r.Method == http.MethodPost && r.URL.Path == "/labels":
		label := models.Label{ID: "new-label", Name: q.Get("name"), Color: q.Get("color")}
		f.labels = append(f.labels, label)
		body = label
	case r.Method == http.MethodPost && r.URL.Path == "/cards":
		body = models.Card{ID: "new-card", Name: q.Get("name"), IDList: q.Get("idList")}
	case r.Method == http.MethodPost && r.URL.Path == "/cards/new-card/idLabels":
		body = []string{q.Get("value")}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	assert.NoError(f.t, json.NewEncoder(w).Encode(body))
}

// lastRequest は最後に受信したリクエストを返します
func (f *fakeTrello) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T) (*TrelloClient, *fakeTrello) {
	t.Helper()
	fake := &fakeTrello{t: t}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.Token = "test-token"
	cfg.BaseURL = server.URL
	return NewTrelloClient(cfg), fake
}

func TestTrelloClient_CheckAuth(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.CheckAuth())

	client.config.Token = "wrong"
	err := client.CheckAuth()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "invalid key")
}

func TestTrelloClient_GetListsAndCards(t *testing.T) {
	client, _ := newTestClient(t)

	lists, err := client.GetLists("b1")
	require.NoError(t, err)
	assert.Equal(t, []models.List{{ID: "l1", Name: "General BackLog"}, {ID: "l2", Name: "SP Tyler"}}, lists)

	cards, err := client.GetListCards("l2")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "2", cards[0].Labels[0].Name)

	boardCards, err := client.GetBoardCards("b1")
	require.NoError(t, err)
	assert.Equal(t, "l2", boardCards[0].IDList)
}

func TestTrelloClient_GetBoardCardsRequestsFields(t *testing.T) {
	client, fake := newTestClient(t)

	_, err := client.GetBoardCards("b1")
	require.NoError(t, err)

	assert.Equal(t, "name,labels,idList", fake.lastRequest().URL.Query().Get("fields"))
}

func TestTrelloClient_FindListID(t *testing.T) {
	client, _ := newTestClient(t)

	id, err := client.FindListID("b1", "General BackLog")
	require.NoError(t, err)
	assert.Equal(t, "l1", id)

	_, err = client.FindListID("b1", "general backlog")
	assert.True(t, errors.Is(err, ErrListNotFound))
}

func TestTrelloClient_NonOKStatus(t *testing.T) {
	client, fake := newTestClient(t)
	fake.status = http.StatusNotFound

	_, err := client.GetLists("b1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "board not found")
}

func TestTrelloClient_GetOrCreateLabel(t *testing.T) {
	client, fake := newTestClient(t)
	fake.labels = []models.Label{{ID: "existing", Name: "2", Color: "yellow"}}

	label, err := client.GetOrCreateLabel("b1", "2", "yellow")
	require.NoError(t, err)
	assert.Equal(t, "existing", label.ID)

	label, err = client.GetOrCreateLabel("b1", "4", "orange")
	require.NoError(t, err)
	assert.Equal(t, models.Label{ID: "new-label", Name: "4", Color: "orange"}, label)

	last := fake.lastRequest()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "b1", last.URL.Query().Get("idBoard"))
}

func TestTrelloClient_CreateCardAndAttachLabel(t *testing.T) {
	client, fake := newTestClient(t)

	card, err := client.CreateCard("l1", "Task A")
	require.NoError(t, err)
	assert.Equal(t, models.Card{ID: "new-card", Name: "Task A", IDList: "l1"}, card)

	require.NoError(t, client.AddLabelToCard(card.ID, "label-2"))
	last := fake.lastRequest()
	assert.Equal(t, "/cards/new-card/idLabels", last.URL.Path)
	assert.Equal(t, "label-2", last.URL.Query().Get("value"))

	err = client.AddLabelToCard("unknown", "label-2")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}
