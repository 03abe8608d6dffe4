package analyzer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/jinford/deck-doctor/pkg/formatting"
	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/jinford/deck-doctor/pkg/validator"
)

// 既知のノートタイプ名
const (
	noteTypeBasic  = "Basic"
	noteTypeCloze  = "Cloze"
	noteTypeTypeIn = "Basic (type in the answer)"
)

// htmlMarkers はHTML使用率の判定に使う固定のタグ部分文字列リストです
var htmlMarkers = []string{
	"<b>", "<i>", "<u>", "<br>", "<sub>", "<sup>", "<ul>", "<ol>", "<div>", "<span>",
}

// DeckQualityAnalyzer はデッキの構造的品質を分析します
//
// sampleSize を指定した場合は母集団から一様ランダムに非復元抽出するため、
// スコアは統計的な推定値となり、繰り返し呼び出すと結果が変動しえます。
type DeckQualityAnalyzer struct {
	store     CardStore
	validator *validator.CardValidator
}

// NewDeckQualityAnalyzer は新しい DeckQualityAnalyzer を作成します
func NewDeckQualityAnalyzer(store CardStore, v *validator.CardValidator) *DeckQualityAnalyzer {
	return &DeckQualityAnalyzer{store: store, validator: v}
}

// noteValidation はノートIDとそのバリデーション結果の組です
type noteValidation struct {
	noteID  int64
	results []models.ValidationResult
}

// Analyze はデッキの品質を分析します
// sampleSize が 0 以下の場合は全カードを対象とします
func (a *DeckQualityAnalyzer) Analyze(ctx context.Context, deckName string, sampleSize int) (*models.QualityReport, error) {
	if err := CheckDeckExists(ctx, a.store, deckName); err != nil {
		return nil, err
	}

	cardIDs, err := a.store.FindCards(ctx, deckQuery(deckName))
	if err != nil {
		return nil, fmt.Errorf("failed to find cards: %w", err)
	}

	if len(cardIDs) == 0 {
		return emptyQualityReport(), nil
	}

	if sampleSize > 0 && sampleSize < len(cardIDs) {
		cardIDs = sampleCardIDs(cardIDs, sampleSize)
	}

	cardsInfo, err := a.store.CardsInfo(ctx, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards info: %w", err)
	}

	// 同一ノートを共有するカード（clozeの各変化形など）は1レコードに集約する
	noteIDs := dedupeNoteIDs(cardsInfo)

	notesInfo, err := a.store.NotesInfo(ctx, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes info: %w", err)
	}

	var validations []noteValidation
	var problematicIDs []int64

	for _, note := range notesInfo {
		card, ok := convertNoteToCard(note)
		if !ok {
			// 変換できないノートはエラーとせず黙ってスキップする
			continue
		}

		results := a.validator.Validate(card)
		validations = append(validations, noteValidation{noteID: note.NoteID, results: results})

		for _, r := range results {
			if r.Severity == models.SeverityError || r.Severity == models.SeverityWarning {
				problematicIDs = append(problematicIDs, note.NoteID)
				break
			}
		}
	}

	patterns := analyzeDeckPatterns(notesInfo)

	return &models.QualityReport{
		Score:              calculateQualityScore(validations, patterns),
		TotalCards:         len(notesInfo),
		IssuesBySeverity:   groupBySeverity(validations),
		TopIssues:          topIssues(validations, 5),
		DeckPatterns:       patterns,
		ProblematicCardIDs: problematicIDs,
	}, nil
}

// emptyQualityReport は空デッキに対する規定のレポートを返します
func emptyQualityReport() *models.QualityReport {
	return &models.QualityReport{
		Score:      100.0,
		TotalCards: 0,
		IssuesBySeverity: map[models.ValidationSeverity]int{
			models.SeverityError:      0,
			models.SeverityWarning:    0,
			models.SeveritySuggestion: 0,
		},
		TopIssues:          []models.IssueCount{},
		DeckPatterns:       models.DeckPatterns{TypeDistribution: map[string]float64{}},
		ProblematicCardIDs: []int64{},
	}
}

// sampleCardIDs は非復元の一様ランダムサンプリングを行います
func sampleCardIDs(cardIDs []int64, sampleSize int) []int64 {
	perm := rand.Perm(len(cardIDs))
	sampled := make([]int64, 0, sampleSize)
	for _, idx := range perm[:sampleSize] {
		sampled = append(sampled, cardIDs[idx])
	}
	return sampled
}

// dedupeNoteIDs はカード情報からノートIDを初出順で重複なく抽出します
func dedupeNoteIDs(cards []models.CardRecord) []int64 {
	seen := make(map[int64]bool, len(cards))
	noteIDs := make([]int64, 0, len(cards))
	for _, c := range cards {
		if !seen[c.NoteID] {
			seen[c.NoteID] = true
			noteIDs = append(noteIDs, c.NoteID)
		}
	}
	return noteIDs
}

// convertNoteToCard はノートをバリデーション用のカードに変換します
// 既知の3タイプは専用フィールドを使い、それ以外は先頭2フィールドを
// front/back とみなすベストエフォートの汎用処理を行います
// 2フィールド未満のノート、および必須フィールドが空のノートは
// 変換失敗（ok=false）としてスキップ対象になります
func convertNoteToCard(note models.NoteRecord) (models.Card, bool) {
	var card models.Card
	switch note.TypeName {
	case noteTypeCloze:
		card = models.NewClozeCard(note.FieldValue("Text"), note.FieldValue("Extra"), note.Tags)

	case noteTypeTypeIn:
		card = models.NewTypeInCard(note.FieldValue("Front"), note.FieldValue("Back"), note.Tags)

	case noteTypeBasic:
		card = models.NewBasicCard(note.FieldValue("Front"), note.FieldValue("Back"), note.Tags)

	default:
		if len(note.Fields) < 2 {
			return models.Card{}, false
		}
		card = models.NewBasicCard(note.Fields[0].Value, note.Fields[1].Value, note.Tags)
	}

	if !card.HasRequiredFields() {
		return models.Card{}, false
	}
	return card, true
}

// analyzeDeckPatterns はノート集合からデッキ全体の構造パターンを導出します
func analyzeDeckPatterns(notes []models.NoteRecord) models.DeckPatterns {
	if len(notes) == 0 {
		return models.DeckPatterns{TypeDistribution: map[string]float64{}}
	}

	taggedCount := 0
	typeCounts := map[string]int{}
	htmlUsageCount := 0
	var fieldLengths []int

	for _, note := range notes {
		if len(note.Tags) > 0 {
			taggedCount++
		}

		typeName := note.TypeName
		if typeName == "" {
			typeName = "Unknown"
		}
		typeCounts[typeName]++

		noteHasHTML := false
		for _, field := range note.Fields {
			if containsHTML(field.Value) {
				noteHasHTML = true
			}
			fieldLengths = append(fieldLengths, formatting.TextLength(field.Value))
		}
		if noteHasHTML {
			htmlUsageCount++
		}
	}

	total := float64(len(notes))
	typeDistribution := make(map[string]float64, len(typeCounts))
	for name, count := range typeCounts {
		typeDistribution[name] = round2(float64(count) / total)
	}

	avgFieldLength := 0.0
	if len(fieldLengths) > 0 {
		sum := 0
		for _, l := range fieldLengths {
			sum += l
		}
		avgFieldLength = round1(float64(sum) / float64(len(fieldLengths)))
	}

	return models.DeckPatterns{
		TagConsistency:   round2(float64(taggedCount) / total),
		TypeDistribution: typeDistribution,
		HTMLUsagePercent: round1(float64(htmlUsageCount) / total * 100),
		AvgFieldLength:   avgFieldLength,
	}
}

func containsHTML(fieldValue string) bool {
	for _, marker := range htmlMarkers {
		if strings.Contains(fieldValue, marker) {
			return true
		}
	}
	return false
}

// calculateQualityScore は総合品質スコアを計算します
// 100点から深刻度別のペナルティを差し引き、[0,100]にクランプします
// 結果は集計順に依存しない決定的な値です
func calculateQualityScore(validations []noteValidation, patterns models.DeckPatterns) float64 {
	errorCount, warningCount, suggestionCount := 0, 0, 0
	for _, v := range validations {
		for _, r := range v.results {
			switch r.Severity {
			case models.SeverityError:
				errorCount++
			case models.SeverityWarning:
				warningCount++
			case models.SeveritySuggestion:
				suggestionCount++
			}
		}
	}

	score := 100.0
	score -= math.Min(float64(errorCount)*10, 50)
	score -= math.Min(float64(warningCount)*3, 30)
	score -= math.Min(float64(suggestionCount)*1, 15)

	// タグの一貫性が低いデッキには追加ペナルティ（最大5点）
	if patterns.TagConsistency < 0.5 {
		score -= (0.5 - patterns.TagConsistency) * 10
	}

	return math.Max(0.0, math.Min(100.0, round1(score)))
}

// groupBySeverity は深刻度ごとの件数を集計します
func groupBySeverity(validations []noteValidation) map[models.ValidationSeverity]int {
	counts := map[models.ValidationSeverity]int{
		models.SeverityError:      0,
		models.SeverityWarning:    0,
		models.SeveritySuggestion: 0,
	}
	for _, v := range validations {
		for _, r := range v.results {
			counts[r.Severity]++
		}
	}
	return counts
}

// topIssues は頻度の高いルール識別子の上位n件を返します
// 同数の場合は初出順を保持します
func topIssues(validations []noteValidation, n int) []models.IssueCount {
	counts := map[string]int{}
	var order []string
	for _, v := range validations {
		for _, r := range v.results {
			if _, ok := counts[r.Rule]; !ok {
				order = append(order, r.Rule)
			}
			counts[r.Rule]++
		}
	}

	issues := make([]models.IssueCount, 0, len(order))
	for _, rule := range order {
		issues = append(issues, models.IssueCount{Rule: rule, Count: counts[rule]})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Count > issues[j].Count
	})

	if len(issues) > n {
		issues = issues[:n]
	}
	return issues
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
