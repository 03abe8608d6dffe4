package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/jinford/deck-doctor/pkg/validator"
)

func newQualityAnalyzer(store CardStore) *DeckQualityAnalyzer {
	return NewDeckQualityAnalyzer(store, validator.New(models.StrictnessModerate))
}

func TestDeckQualityAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("存在しないデッキはDeckNotFoundErrorを返す", func(t *testing.T) {
		store := &fakeCardStore{deckNames: []string{"Biology", "Biology::Cells", "Chemistry"}}
		analyzer := newQualityAnalyzer(store)

		_, err := analyzer.Analyze(ctx, "biology", 0)
		require.Error(t, err)

		var notFound *DeckNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "biology", notFound.Deck)
		assert.Equal(t, []string{"Biology", "Biology::Cells"}, notFound.Suggestions)
	})

	t.Run("空のデッキは満点のレポートを返す", func(t *testing.T) {
		store := &fakeCardStore{deckNames: []string{"Empty"}}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Empty", 0)
		require.NoError(t, err)

		assert.Equal(t, 100.0, report.Score)
		assert.Equal(t, 0, report.TotalCards)
		assert.Empty(t, report.TopIssues)
		assert.Empty(t, report.ProblematicCardIDs)
		assert.Equal(t, 0, report.IssuesBySeverity[models.SeverityError])
	})

	t.Run("問題のないデッキは満点になる", func(t *testing.T) {
		store := &fakeCardStore{
			deckNames: []string{"Geography"},
			cardIDs:   []int64{101, 102},
			cards: []models.CardRecord{
				{CardID: 101, NoteID: 1},
				{CardID: 102, NoteID: 2},
			},
			notes: []models.NoteRecord{
				basicNote(1, "What is the capital of France?", "Paris", "geography"),
				basicNote(2, "What is the capital of Japan?", "Tokyo", "geography"),
			},
		}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Geography", 0)
		require.NoError(t, err)

		assert.Equal(t, `deck:"Geography"`, store.lastQuery)
		assert.Equal(t, 100.0, report.Score)
		assert.Equal(t, 2, report.TotalCards)
		assert.Empty(t, report.ProblematicCardIDs)
		assert.Equal(t, 1.0, report.DeckPatterns.TagConsistency)
	})

	t.Run("エラーと提案がスコアから減点される", func(t *testing.T) {
		store := &fakeCardStore{
			deckNames: []string{"Mixed"},
			cardIDs:   []int64{201, 202},
			cards: []models.CardRecord{
				{CardID: 201, NoteID: 10},
				{CardID: 202, NoteID: 11},
			},
			notes: []models.NoteRecord{
				// clozeマーカーの欠落で1エラー
				clozeNote(10, "The capital is {{c1:Paris}}", "geo"),
				// 曖昧な表現で1提案
				basicNote(11, "Tell me about Paris", "A city in France", "geo"),
			},
		}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Mixed", 0)
		require.NoError(t, err)

		assert.Equal(t, 1, report.IssuesBySeverity[models.SeverityError])
		assert.Equal(t, 0, report.IssuesBySeverity[models.SeverityWarning])
		assert.Equal(t, 1, report.IssuesBySeverity[models.SeveritySuggestion])

		// 100 - 10 (エラー) - 1 (提案)
		assert.Equal(t, 89.0, report.Score)

		// エラーまたは警告を持つノートだけが問題カードに入る
		assert.Equal(t, []int64{10}, report.ProblematicCardIDs)

		require.Len(t, report.TopIssues, 2)
		assert.Equal(t, validator.RuleClozeFormat, report.TopIssues[0].Rule)
		assert.Equal(t, validator.RuleAmbiguity, report.TopIssues[1].Rule)
	})

	t.Run("タグの一貫性が低いと追加で減点される", func(t *testing.T) {
		store := &fakeCardStore{
			deckNames: []string{"Untagged"},
			cardIDs:   []int64{301, 302},
			cards: []models.CardRecord{
				{CardID: 301, NoteID: 20},
				{CardID: 302, NoteID: 21},
			},
			notes: []models.NoteRecord{
				basicNote(20, "What is the capital of France?", "Paris"),
				basicNote(21, "What is the capital of Japan?", "Tokyo"),
			},
		}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Untagged", 0)
		require.NoError(t, err)

		assert.Equal(t, 0.0, report.DeckPatterns.TagConsistency)
		// 100 - (0.5 - 0.0) * 10
		assert.Equal(t, 95.0, report.Score)
	})

	t.Run("同一ノートを共有するカードは1ノートに集約される", func(t *testing.T) {
		store := &fakeCardStore{
			deckNames: []string{"Cloze"},
			cardIDs:   []int64{401, 402},
			cards: []models.CardRecord{
				// cloze変化形2枚が同じノートを参照する
				{CardID: 401, NoteID: 30},
				{CardID: 402, NoteID: 30},
			},
			notes: []models.NoteRecord{
				clozeNote(30, "{{c1::Mitochondria}} produce {{c2::ATP}} in cells", "bio"),
			},
		}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Cloze", 0)
		require.NoError(t, err)

		require.Len(t, store.notesInfoCalled, 1)
		assert.Equal(t, []int64{30}, store.notesInfoCalled[0])
		assert.Equal(t, 1, report.TotalCards)
	})

	t.Run("未知のノートタイプは先頭2フィールドで検証される", func(t *testing.T) {
		store := &fakeCardStore{
			deckNames: []string{"Custom"},
			cardIDs:   []int64{501, 502},
			cards: []models.CardRecord{
				{CardID: 501, NoteID: 40},
				{CardID: 502, NoteID: 41},
			},
			notes: []models.NoteRecord{
				{
					NoteID:   40,
					TypeName: "Vocabulary",
					Fields: []models.NoteField{
						{Name: "Word", Value: "Tell me about verbs", Order: 0},
						{Name: "Meaning", Value: "An action word", Order: 1},
						{Name: "Example", Value: "run, jump", Order: 2},
					},
					Tags: []string{"vocab"},
				},
				// フィールドが2つ未満のノートは黙ってスキップされる
				{
					NoteID:   41,
					TypeName: "Snippet",
					Fields: []models.NoteField{
						{Name: "Content", Value: "orphan", Order: 0},
					},
				},
			},
		}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Custom", 0)
		require.NoError(t, err)

		// 曖昧表現の提案が先頭フィールドに対して検出される
		assert.Equal(t, 1, report.IssuesBySeverity[models.SeveritySuggestion])
		assert.Equal(t, 2, report.TotalCards)
	})

	t.Run("サンプルサイズ指定時は部分集合だけを検証する", func(t *testing.T) {
		cardIDs := make([]int64, 100)
		cards := make([]models.CardRecord, 100)
		notes := make([]models.NoteRecord, 100)
		for i := range cardIDs {
			cardIDs[i] = int64(1000 + i)
			cards[i] = models.CardRecord{CardID: int64(1000 + i), NoteID: int64(i)}
			notes[i] = basicNote(int64(i), "What is the capital of France?", "Paris", "geo")
		}
		store := &fakeCardStore{deckNames: []string{"Big"}, cardIDs: cardIDs, cards: cards, notes: notes}
		analyzer := newQualityAnalyzer(store)

		report, err := analyzer.Analyze(ctx, "Big", 10)
		require.NoError(t, err)

		require.Len(t, store.cardsInfoCalled, 1)
		assert.Len(t, store.cardsInfoCalled[0], 10)
		assert.Equal(t, 10, report.TotalCards)
	})
}

func TestAnalyzeDeckPatterns(t *testing.T) {
	t.Run("タイプ分布とHTML使用率を集計する", func(t *testing.T) {
		notes := []models.NoteRecord{
			basicNote(1, "What is the capital of France?", "<b>Paris</b>", "geo"),
			basicNote(2, "What is the capital of Japan?", "Tokyo"),
			clozeNote(3, "{{c1::Rome}} is in Italy", "geo"),
			clozeNote(4, "{{c1::Berlin}} is in Germany", "geo"),
		}

		patterns := analyzeDeckPatterns(notes)

		assert.Equal(t, 0.75, patterns.TagConsistency)
		assert.Equal(t, map[string]float64{"Basic": 0.5, "Cloze": 0.5}, patterns.TypeDistribution)
		assert.Equal(t, 25.0, patterns.HTMLUsagePercent)
	})

	t.Run("平均フィールド長はHTML除去後の文字数で計算する", func(t *testing.T) {
		notes := []models.NoteRecord{
			basicNote(1, "aaaa", "<b>bb</b>"),
		}

		patterns := analyzeDeckPatterns(notes)

		// (4 + 2) / 2
		assert.Equal(t, 3.0, patterns.AvgFieldLength)
	})

	t.Run("ノートがない場合はゼロ値を返す", func(t *testing.T) {
		patterns := analyzeDeckPatterns(nil)

		assert.Equal(t, 0.0, patterns.TagConsistency)
		assert.Empty(t, patterns.TypeDistribution)
	})
}

func TestConvertNoteToCard(t *testing.T) {
	t.Run("既知の3タイプを対応するカードに変換する", func(t *testing.T) {
		card, ok := convertNoteToCard(basicNote(1, "What is ATP?", "Energy currency", "bio"))
		require.True(t, ok)
		assert.Equal(t, models.CardTypeBasic, card.Type)
		assert.Equal(t, "What is ATP?", card.Front)

		card, ok = convertNoteToCard(clozeNote(2, "{{c1::ATP}} is the energy currency"))
		require.True(t, ok)
		assert.Equal(t, models.CardTypeCloze, card.Type)
	})

	t.Run("必須フィールドが空白のみのノートはスキップする", func(t *testing.T) {
		_, ok := convertNoteToCard(basicNote(1, "   ", "Paris"))
		assert.False(t, ok)

		_, ok = convertNoteToCard(basicNote(2, "What is the capital of France?", ""))
		assert.False(t, ok)

		_, ok = convertNoteToCard(clozeNote(3, "  "))
		assert.False(t, ok)
	})

	t.Run("未知タイプは先頭2フィールドをfront/backとみなす", func(t *testing.T) {
		note := models.NoteRecord{
			NoteID:   4,
			TypeName: "Image Occlusion",
			Fields: []models.NoteField{
				{Name: "Header", Value: "Cell structure", Order: 0},
				{Name: "Answer", Value: "Mitochondria", Order: 1},
			},
		}
		card, ok := convertNoteToCard(note)
		require.True(t, ok)
		assert.Equal(t, "Cell structure", card.Front)
		assert.Equal(t, "Mitochondria", card.Back)
	})

	t.Run("未知タイプで2フィールド未満のノートはスキップする", func(t *testing.T) {
		note := models.NoteRecord{
			NoteID:   5,
			TypeName: "Single",
			Fields:   []models.NoteField{{Name: "Only", Value: "text", Order: 0}},
		}
		_, ok := convertNoteToCard(note)
		assert.False(t, ok)
	})
}

func TestCalculateQualityScore(t *testing.T) {
	okPatterns := models.DeckPatterns{TagConsistency: 1.0}

	results := func(severity models.ValidationSeverity, n int) []noteValidation {
		vs := make([]noteValidation, n)
		for i := range vs {
			vs[i] = noteValidation{
				noteID:  int64(i),
				results: []models.ValidationResult{{Severity: severity, Rule: "test"}},
			}
		}
		return vs
	}

	t.Run("深刻度ごとのペナルティに上限がある", func(t *testing.T) {
		// エラーのペナルティは最大50
		assert.Equal(t, 50.0, calculateQualityScore(results(models.SeverityError, 20), okPatterns))
		// 警告のペナルティは最大30
		assert.Equal(t, 70.0, calculateQualityScore(results(models.SeverityWarning, 20), okPatterns))
		// 提案のペナルティは最大15
		assert.Equal(t, 85.0, calculateQualityScore(results(models.SeveritySuggestion, 20), okPatterns))
	})

	t.Run("スコアは0を下回らない", func(t *testing.T) {
		all := append(results(models.SeverityError, 20), results(models.SeverityWarning, 20)...)
		all = append(all, results(models.SeveritySuggestion, 20)...)
		score := calculateQualityScore(all, models.DeckPatterns{TagConsistency: 0.0})
		assert.Equal(t, 0.0, score)
	})

	t.Run("問題がなければ満点を返す", func(t *testing.T) {
		assert.Equal(t, 100.0, calculateQualityScore(nil, okPatterns))
	})
}
