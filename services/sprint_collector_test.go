package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trelloburndown/config"
	"trelloburndown/models"
)

func labels(names ...string) []models.Label {
	result := make([]models.Label, 0, len(names))
	for _, n := range names {
		result = append(result, models.Label{Name: n})
	}
	return result
}

func sprintBoard() *fakeBoard {
	board := newFakeBoard()
	board.lists = []models.List{
		{ID: "l1", Name: "SP Tyler"},
		{ID: "l2", Name: "sp vincent"},
		{ID: "l3", Name: "Sprint 1 Backlog"},
		{ID: "l4", Name: "Done"},
	}
	board.listCards["l1"] = []models.Card{
		{ID: "c1", Labels: labels("2", "Design")},
		{ID: "c2", Labels: labels("4", "1")},
	}
	board.listCards["l2"] = []models.Card{
		{ID: "c3", Labels: labels("1.5", "8")},
	}
	board.listCards["l3"] = []models.Card{
		{ID: "c4", Labels: labels("3")},
	}
	board.listCards["l4"] = []models.Card{
		{ID: "c5", Labels: labels("100")},
	}
	return board
}

func TestPrefixMatcher(t *testing.T) {
	match := PrefixMatcher("sp ")
	assert.True(t, match("SP Tyler"))
	assert.True(t, match("sp vincent"))
	assert.False(t, match("Sprint 1 Backlog"))
	assert.False(t, match("Done"))
}

func TestAllowListMatcher(t *testing.T) {
	match := AllowListMatcher([]string{"Sprint 1 Backlog", "Tyler"})
	assert.True(t, match("Sprint 1 Backlog"))
	assert.True(t, match("Tyler"))
	assert.False(t, match("tyler"))
	assert.False(t, match("SP Tyler"))
}

func TestLabelParsers(t *testing.T) {
	v, ok := IntLabelParser(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = IntLabelParser("1.5")
	assert.False(t, ok)

	v, ok = FloatLabelParser("1.5")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = FloatLabelParser("Design")
	assert.False(t, ok)
}

func TestSprintCollector_PrefixIntTotal(t *testing.T) {
	collector := NewSprintCollector(sprintBoard(), "board", PrefixMatcher("sp "), IntLabelParser)

	total, err := collector.Total()
	require.NoError(t, err)
	// 2 + 4 + 1 + 8 (1.5 は整数でないため除外)
	assert.Equal(t, 15.0, total)
}

func TestSprintCollector_AllowListFloatTotal(t *testing.T) {
	collector := NewSprintCollector(sprintBoard(), "board", AllowListMatcher([]string{"sp vincent", "Sprint 1 Backlog"}), FloatLabelParser)

	total, err := collector.Total()
	require.NoError(t, err)
	assert.Equal(t, 12.5, total)
}

func TestSprintCollector_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ListMatch = config.ListMatchAllowList
	cfg.AllowedLists = []string{"Done"}
	cfg.LabelNumber = config.LabelNumberFloat

	collector := NewSprintCollector(sprintBoard(), "board", MatcherFromConfig(cfg), ParserFromConfig(cfg))
	total, err := collector.Total()
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
}

func TestSprintCollector_SkipsFailedList(t *testing.T) {
	board := sprintBoard()
	board.failListCards["l1"] = true

	total, err := NewSprintCollector(board, "board", PrefixMatcher("sp "), IntLabelParser).Total()
	require.NoError(t, err)
	assert.Equal(t, 8.0, total)
}

func TestSprintCollector_ListFetchFailure(t *testing.T) {
	board := sprintBoard()
	board.failLists = true

	series := models.NewSeries()
	_, err := NewSprintCollector(board, "board", PrefixMatcher("sp "), IntLabelParser).Collect(series, time.Now())
	require.Error(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestSprintCollector_CollectOverwritesToday(t *testing.T) {
	collector := NewSprintCollector(sprintBoard(), "board", PrefixMatcher("sp "), IntLabelParser)
	today := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	series := models.NewSeries()
	series.Values["2025-03-09"] = 20
	series.Values["2025-03-10"] = 99

	total, err := collector.Collect(series, today)
	require.NoError(t, err)

	assert.Equal(t, 15.0, total)
	assert.Equal(t, map[string]float64{"2025-03-09": 20, "2025-03-10": 15}, series.Values)
	assert.Equal(t, "2025-03-10", series.StartDate)
}

func TestSprintCollector_KeepsExistingStartDate(t *testing.T) {
	collector := NewSprintCollector(sprintBoard(), "board", PrefixMatcher("sp "), IntLabelParser)

	series := models.NewSeries()
	series.StartDate = "2025-03-01"

	_, err := collector.Collect(series, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", series.StartDate)
}
