package commands

import (
	"testing"

	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Equal(t, []string{"biology"}, splitTags("biology"))
	assert.Equal(t, []string{"biology", "cells"}, splitTags("biology,cells"))
	assert.Equal(t, []string{"biology", "cells"}, splitTags(" biology , cells "))
	assert.Equal(t, []string{"cells"}, splitTags(",cells,"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "exactlyten", truncateString("exactlyten", 10))
	assert.Equal(t, "toolong...", truncateString("toolongstring", 10))

	// マルチバイト文字もルーン単位で丸める
	assert.Equal(t, "長いテキストはこ...", truncateString("長いテキストはここで切られる", 11))
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "(no tags)", joinOrNone(nil))
	assert.Equal(t, "biology, cells", joinOrNone([]string{"biology", "cells"}))
}

func TestCheckRequiredFields(t *testing.T) {
	t.Run("空白のみの必須フィールドは拒否する", func(t *testing.T) {
		err := checkRequiredFields(models.NewBasicCard("   ", "", nil))
		assert.ErrorContains(t, err, "空にできません")

		err = checkRequiredFields(models.NewTypeInCard("What is ATP?", "  ", nil))
		assert.ErrorContains(t, err, "空にできません")

		err = checkRequiredFields(models.NewClozeCard("   ", "", nil))
		assert.ErrorContains(t, err, "穴埋めテキストが空です")
	})

	t.Run("必須フィールドが埋まっていれば通過する", func(t *testing.T) {
		assert.NoError(t, checkRequiredFields(models.NewBasicCard("What is ATP?", "Energy currency", nil)))
		assert.NoError(t, checkRequiredFields(models.NewClozeCard("{{c1::ATP}} is the energy currency", "", nil)))
	})
}

func TestNoteForCard(t *testing.T) {
	t.Run("基本カードはBasicモデルになる", func(t *testing.T) {
		card := models.NewBasicCard("What is DNA?", "Deoxyribonucleic acid", []string{"biology"})
		card.Deck = "Biology"

		note := noteForCard(card)

		assert.Equal(t, "Basic", note.ModelName)
		assert.Equal(t, "Biology", note.DeckName)
		assert.Equal(t, "What is DNA?", note.Fields["Front"])
		assert.Equal(t, "Deoxyribonucleic acid", note.Fields["Back"])
		assert.Equal(t, []string{"biology"}, note.Tags)
	})

	t.Run("穴埋めカードはClozeモデルでExtraは空なら省略", func(t *testing.T) {
		card := models.NewClozeCard("The capital of France is {{c1::Paris}}", "", nil)
		note := noteForCard(card)

		assert.Equal(t, "Cloze", note.ModelName)
		assert.Equal(t, "The capital of France is {{c1::Paris}}", note.Fields["Text"])
		assert.NotContains(t, note.Fields, "Extra")
	})

	t.Run("穴埋めカードのExtraは指定時のみ含まれる", func(t *testing.T) {
		card := models.NewClozeCard("{{c1::ATP}} is the energy currency", "See chapter 3", nil)
		note := noteForCard(card)

		assert.Equal(t, "See chapter 3", note.Fields["Extra"])
	})

	t.Run("タイプ入力カードは専用モデルになる", func(t *testing.T) {
		card := models.NewTypeInCard("Chemical symbol for gold", "Au", nil)
		note := noteForCard(card)

		assert.Equal(t, "Basic (type in the answer)", note.ModelName)
		assert.Equal(t, "Au", note.Fields["Back"])
	})
}

func TestCardPreview(t *testing.T) {
	t.Run("BasicはFrontとBackのプレビュー", func(t *testing.T) {
		note := models.NoteRecord{
			TypeName: "Basic",
			Fields: []models.NoteField{
				{Name: "Front", Value: "What is DNA?", Order: 0},
				{Name: "Back", Value: "Deoxyribonucleic acid", Order: 1},
			},
		}
		assert.Equal(t, `"What is DNA?" -> "Deoxyribonucleic acid"`, cardPreview(note))
	})

	t.Run("ClozeはTextのみ", func(t *testing.T) {
		note := models.NoteRecord{
			TypeName: "Cloze",
			Fields: []models.NoteField{
				{Name: "Text", Value: "The {{c1::mitochondria}} is the powerhouse", Order: 0},
			},
		}
		assert.Equal(t, `"The {{c1::mitochondria}} is the powerhouse"`, cardPreview(note))
	})

	t.Run("未知のタイプは先頭フィールド", func(t *testing.T) {
		note := models.NoteRecord{
			TypeName: "Custom",
			Fields: []models.NoteField{
				{Name: "Question", Value: "custom question", Order: 0},
				{Name: "Answer", Value: "custom answer", Order: 1},
			},
		}
		assert.Equal(t, `"custom question"`, cardPreview(note))
	})

	t.Run("フィールドなしは固定表示", func(t *testing.T) {
		assert.Equal(t, "(no fields)", cardPreview(models.NoteRecord{TypeName: "Custom"}))
	})
}

func TestSortedCountKeys(t *testing.T) {
	counts := map[string]int{"beta": 3, "alpha": 3, "gamma": 5, "delta": 1}

	keys := sortedCountKeys(counts)

	// 件数の降順、同数は名前の昇順
	assert.Equal(t, []string{"gamma", "alpha", "beta", "delta"}, keys)
}

func TestContainsAnyMarker(t *testing.T) {
	assert.True(t, containsAnyMarker("uses <b>bold</b> text"))
	assert.True(t, containsAnyMarker("line<br>break"))
	assert.False(t, containsAnyMarker("plain text"))
	assert.False(t, containsAnyMarker("H2O without markup"))
}

func TestCoverageDesc(t *testing.T) {
	assert.Equal(t, "", coverageDesc(models.ConceptCoverage{ConceptName: "osmosis"}))
	assert.Equal(t, " - water movement", coverageDesc(models.ConceptCoverage{ConceptName: "osmosis", Description: "water movement"}))
}
