package formatting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinford/deck-doctor/pkg/models"
)

func TestFormatQualityReport(t *testing.T) {
	report := &models.QualityReport{
		Score:      72.5,
		TotalCards: 40,
		IssuesBySeverity: map[models.ValidationSeverity]int{
			models.SeverityError:      1,
			models.SeverityWarning:    4,
			models.SeveritySuggestion: 7,
		},
		TopIssues: []models.IssueCount{
			{Rule: "answer_length", Count: 4},
			{Rule: "cloze_format", Count: 1},
		},
		DeckPatterns: models.DeckPatterns{
			TagConsistency:   0.85,
			TypeDistribution: map[string]float64{"Basic": 0.6, "Cloze": 0.4},
			HTMLUsagePercent: 12.5,
			AvgFieldLength:   48.3,
		},
	}

	got := FormatQualityReport(report, "Biology", 0)

	assert.Contains(t, got, `Deck Quality Analysis: "Biology"`)
	assert.Contains(t, got, "Overall Score: 72.5/100 (Good)")
	assert.Contains(t, got, "Total Cards: 40")
	assert.Contains(t, got, "Errors: 1")
	assert.Contains(t, got, "1. Answer Length: 4 cards")
	assert.Contains(t, got, "2. Cloze Format: 1 cards")
	assert.Contains(t, got, "Tag Consistency: 85% (Good)")
	assert.Contains(t, got, "Basic: 60%")
	assert.NotContains(t, got, "analyzed sample")
	assert.NotContains(t, got, "heavily uses one card type")
}

func TestFormatQualityReport_SampledAndImbalanced(t *testing.T) {
	report := &models.QualityReport{
		Score:      35.0,
		TotalCards: 50,
		IssuesBySeverity: map[models.ValidationSeverity]int{
			models.SeverityError: 5,
		},
		DeckPatterns: models.DeckPatterns{
			TagConsistency:   0.2,
			TypeDistribution: map[string]float64{"Basic": 0.9, "Cloze": 0.1},
		},
	}

	got := FormatQualityReport(report, "History", 50)

	assert.Contains(t, got, "(analyzed sample of 50)")
	assert.Contains(t, got, "(Poor)")
	assert.Contains(t, got, "(Low - consider adding tags)")
	assert.Contains(t, got, "heavily uses one card type")
	// スコアが低い場合は改善計画への導線を示す
	assert.Contains(t, got, "deck-doctor recommend")
}

func TestFormatPerformanceReport(t *testing.T) {
	t.Run("レビュー済みカードがない場合の案内", func(t *testing.T) {
		report := &models.PerformanceReport{
			MaturityBreakdown: map[string]int{"young": 0, "mature": 0, "very_mature": 0},
		}

		got := FormatPerformanceReport(report, "Fresh")
		assert.Contains(t, got, "No reviewed cards found in this deck.")
	})

	t.Run("統計と苦戦カードを一覧する", func(t *testing.T) {
		report := &models.PerformanceReport{
			RetentionRate: 0.88,
			TotalReviews:  320,
			LapseRate:     0.1,
			EaseDistribution: map[string]int{
				"<1.5": 1, "1.5-2.0": 2, "2.0-2.5": 7, "2.5-3.0": 8, ">3.0": 2,
			},
			StrugglingCards: []models.StrugglingCard{
				{NoteID: 42, Ease: 1.3, Lapses: 4, IntervalDays: 2},
			},
			MaturityBreakdown: map[string]int{"young": 5, "mature": 10, "very_mature": 5},
		}

		got := FormatPerformanceReport(report, "Chemistry")

		assert.Contains(t, got, "Retention Rate: 88.0% (Excellent - target: 85-90%)")
		assert.Contains(t, got, "Total Reviews: 320")
		assert.Contains(t, got, "Cards Analyzed: 20")
		assert.Contains(t, got, "2.0-2.5 (Normal): 7 (35%)")
		assert.Contains(t, got, "Lapse Rate: 10.0% (Low - good retention)")
		assert.Contains(t, got, "Struggling Cards (1):")
		assert.Contains(t, got, "Note ID 42")
		assert.Contains(t, got, "Ease: 1.30, Lapses: 4, Interval: 2 days")
		assert.Contains(t, got, "Mature (21-90 days): 10 (50%)")
	})

	t.Run("苦戦カードの表示は10件で打ち切る", func(t *testing.T) {
		report := &models.PerformanceReport{
			RetentionRate:     0.9,
			MaturityBreakdown: map[string]int{"young": 15},
			EaseDistribution:  map[string]int{"<1.5": 15},
		}
		for i := int64(0); i < 15; i++ {
			report.StrugglingCards = append(report.StrugglingCards, models.StrugglingCard{NoteID: i, Ease: 1.2, Lapses: 3})
		}

		got := FormatPerformanceReport(report, "Hard")
		assert.Contains(t, got, "...and 5 more struggling cards")
	})
}

func TestFormatRecommendations(t *testing.T) {
	t.Run("推奨がない場合はその旨を伝える", func(t *testing.T) {
		got := FormatRecommendations(nil, "Biology")
		assert.Contains(t, got, "No recommendations - deck is in good shape!")
	})

	t.Run("優先度の階層別にグループ化する", func(t *testing.T) {
		recs := []models.Recommendation{
			{
				Title:           "Fix 3 cards with validation errors",
				Impact:          models.ImpactHigh,
				Effort:          models.EffortQuick,
				PriorityScore:   10.0,
				Description:     "Critical validation errors.",
				AffectedCardIDs: []int64{1, 2, 3},
			},
			{
				Title:         "Improve retention rate (currently 70%)",
				Impact:        models.ImpactHigh,
				Effort:        models.EffortModerate,
				PriorityScore: 3.33,
				Description:   "Retention below target.",
			},
			{
				Title:         "Reduce lapse rate (currently 30%)",
				Impact:        models.ImpactMedium,
				Effort:        models.EffortModerate,
				PriorityScore: 1.67,
				Description:   "Cards forgotten frequently.",
			},
		}

		got := FormatRecommendations(recs, "Biology")

		assert.Contains(t, got, "Generated 3 prioritized recommendations")
		assert.Contains(t, got, "=== QUICK WINS (High Impact, Low Effort) ===")
		assert.Contains(t, got, "=== SCHEDULE SOON (Good Impact/Effort Ratio) ===")
		assert.Contains(t, got, "=== CONSIDER (Lower Priority) ===")
		assert.Contains(t, got, "1. Fix 3 cards with validation errors [Priority: 10.0]")
		assert.Contains(t, got, "Impact: High | Effort: Quick")
		assert.Contains(t, got, "Affected cards: 3")
		assert.Contains(t, got, "=== TRACK PROGRESS ===")

		// 番号は階層をまたいで連番になる
		quickIdx := strings.Index(got, "1. Fix 3 cards")
		soonIdx := strings.Index(got, "2. Improve retention rate")
		considerIdx := strings.Index(got, "3. Reduce lapse rate")
		assert.True(t, quickIdx < soonIdx && soonIdx < considerIdx)
	})
}
