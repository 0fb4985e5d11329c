package services

import (
	"errors"
	"fmt"

	"trelloburndown/models"
)

var errFake = errors.New("fake board failure")

// fakeBoard はテスト用のインメモリボードです
type fakeBoard struct {
	lists      []models.List
	listCards  map[string][]models.Card
	boardCards []models.Card
	labels     []models.Label

	created  []models.Card
	attached map[string][]string

	failLists       bool
	failBoardCards  bool
	failListCards   map[string]bool
	failLabelCreate map[string]bool
	failCardCreate  map[string]bool

	nextID int
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		listCards:       make(map[string][]models.Card),
		attached:        make(map[string][]string),
		failListCards:   make(map[string]bool),
		failLabelCreate: make(map[string]bool),
		failCardCreate:  make(map[string]bool),
	}
}

func (f *fakeBoard) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeBoard) GetLists(boardID string) ([]models.List, error) {
	if f.failLists {
		return nil, errFake
	}
	return f.lists, nil
}

func (f *fakeBoard) FindListID(boardID, listName string) (string, error) {
	for _, l := range f.lists {
		if l.Name == listName {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("list %q: %w", listName, errFake)
}

func (f *fakeBoard) GetListCards(listID string) ([]models.Card, error) {
	if f.failListCards[listID] {
		return nil, errFake
	}
	return f.listCards[listID], nil
}

func (f *fakeBoard) GetBoardCards(boardID string) ([]models.Card, error) {
	if f.failBoardCards {
		return nil, errFake
	}
	return f.boardCards, nil
}

func (f *fakeBoard) CreateCard(listID, name string) (models.Card, error) {
	if f.failCardCreate[name] {
		return models.Card{}, errFake
	}
	card := models.Card{ID: f.id("card"), Name: name, IDList: listID}
	f.created = append(f.created, card)
	return card, nil
}

func (f *fakeBoard) CreateLabel(boardID, name, color string) (models.Label, error) {
	if f.failLabelCreate[name] {
		return models.Label{}, errFake
	}
	label := models.Label{ID: f.id("label"), Name: name, Color: color}
	f.labels = append(f.labels, label)
	return label, nil
}

func (f *fakeBoard) GetOrCreateLabel(boardID, name, color string) (models.Label, error) {
	for _, l := range f.labels {
		if l.Name == name {
			return l, nil
		}
	}
	return f.CreateLabel(boardID, name, color)
}

func (f *fakeBoard) AddLabelToCard(cardID, labelID string) error {
	f.attached[cardID] = append(f.attached[cardID], labelID)
	return nil
}

// labelByID は作成済みラベルを ID で検索します
func (f *fakeBoard) labelByID(id string) models.Label {
	for _, l := range f.labels {
		if l.ID == id {
			return l
		}
	}
	return models.Label{}
}

// attachedLabels はカードに付与されたラベルを返します
func (f *fakeBoard) attachedLabels(cardID string) []models.Label {
	var labels []models.Label
	for _, id := range f.attached[cardID] {
		labels = append(labels, f.labelByID(id))
	}
	return labels
}
