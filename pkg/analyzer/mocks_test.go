package analyzer

import (
	"context"

	"github.com/jinford/deck-doctor/pkg/models"
)

// fakeCardStore は CardStore のテスト用フェイク実装です
type fakeCardStore struct {
	deckNames []string
	cardIDs   []int64
	cards     []models.CardRecord
	notes     []models.NoteRecord

	deckNamesErr error
	findCardsErr error
	cardsInfoErr error
	notesInfoErr error

	// 呼び出しの検証用
	lastQuery       string
	cardsInfoCalled [][]int64
	notesInfoCalled [][]int64
}

var _ CardStore = (*fakeCardStore)(nil)

func (f *fakeCardStore) FindCards(ctx context.Context, query string) ([]int64, error) {
	f.lastQuery = query
	if f.findCardsErr != nil {
		return nil, f.findCardsErr
	}
	return f.cardIDs, nil
}

func (f *fakeCardStore) CardsInfo(ctx context.Context, cardIDs []int64) ([]models.CardRecord, error) {
	f.cardsInfoCalled = append(f.cardsInfoCalled, cardIDs)
	if f.cardsInfoErr != nil {
		return nil, f.cardsInfoErr
	}
	requested := make(map[int64]bool, len(cardIDs))
	for _, id := range cardIDs {
		requested[id] = true
	}
	var result []models.CardRecord
	for _, c := range f.cards {
		if requested[c.CardID] {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCardStore) NotesInfo(ctx context.Context, noteIDs []int64) ([]models.NoteRecord, error) {
	f.notesInfoCalled = append(f.notesInfoCalled, noteIDs)
	if f.notesInfoErr != nil {
		return nil, f.notesInfoErr
	}
	requested := make(map[int64]bool, len(noteIDs))
	for _, id := range noteIDs {
		requested[id] = true
	}
	var result []models.NoteRecord
	for _, n := range f.notes {
		if requested[n.NoteID] {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeCardStore) DeckNames(ctx context.Context) ([]string, error) {
	if f.deckNamesErr != nil {
		return nil, f.deckNamesErr
	}
	return f.deckNames, nil
}

// basicNote は Basic ノートのテストデータを作ります
func basicNote(noteID int64, front, back string, tags ...string) models.NoteRecord {
	return models.NoteRecord{
		NoteID:   noteID,
		TypeName: "Basic",
		Fields: []models.NoteField{
			{Name: "Front", Value: front, Order: 0},
			{Name: "Back", Value: back, Order: 1},
		},
		Tags: tags,
	}
}

// clozeNote は Cloze ノートのテストデータを作ります
func clozeNote(noteID int64, text string, tags ...string) models.NoteRecord {
	return models.NoteRecord{
		NoteID:   noteID,
		TypeName: "Cloze",
		Fields: []models.NoteField{
			{Name: "Text", Value: text, Order: 0},
			{Name: "Extra", Value: "", Order: 1},
		},
		Tags: tags,
	}
}
