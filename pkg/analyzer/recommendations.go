package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jinford/deck-doctor/pkg/models"
)

// 効果スコア
const (
	impactScoreHigh   = 10.0
	impactScoreMedium = 5.0
	impactScoreLow    = 2.0
)

// 作業量スコア
const (
	effortScoreQuick    = 1.0  // 5分未満
	effortScoreModerate = 3.0  // 30分未満
	effortScoreLarge    = 10.0 // 1時間以上
)

// defaultMaxRecommendations は返却する推奨アクションの既定の上限数です
const defaultMaxRecommendations = 10

// RecommendationEngine は分析レポートから優先度付きの改善推奨を生成します
// 状態を持たないため、ゼロ値のまま再利用できます
type RecommendationEngine struct{}

// NewRecommendationEngine は新しい RecommendationEngine を作成します
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// Generate は品質・パフォーマンスレポートから推奨アクションを生成します
// どちらのレポートも nil を許容し、両方揃っている場合のみ相関分析を行います
// 結果は優先度スコアの降順で、maxRecommendations 件に切り詰めて返します
// maxRecommendations が 0 以下の場合は既定値を使用します
func (e *RecommendationEngine) Generate(qualityReport *models.QualityReport, performanceReport *models.PerformanceReport, maxRecommendations int) []models.Recommendation {
	if maxRecommendations <= 0 {
		maxRecommendations = defaultMaxRecommendations
	}

	var recs []models.Recommendation

	if qualityReport != nil {
		recs = append(recs, e.qualityRecommendations(qualityReport)...)
	}

	if performanceReport != nil {
		recs = append(recs, e.performanceRecommendations(performanceReport)...)
	}

	if qualityReport != nil && performanceReport != nil {
		recs = append(recs, e.combinedRecommendations(qualityReport, performanceReport)...)
	}

	for i := range recs {
		recs[i].PriorityScore = calculatePriority(recs[i])
	}

	// 同点の場合は生成順を保持する
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PriorityScore > recs[j].PriorityScore
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// qualityRecommendations は品質レポートに基づく推奨を生成します
func (e *RecommendationEngine) qualityRecommendations(report *models.QualityReport) []models.Recommendation {
	var recs []models.Recommendation

	// バリデーションエラーの修正
	errorCount := report.IssuesBySeverity[models.SeverityError]
	if errorCount > 0 {
		effort := models.EffortModerate
		if errorCount <= 5 {
			effort = models.EffortQuick
		}
		affected := report.ProblematicCardIDs
		if len(affected) > errorCount {
			affected = affected[:errorCount]
		}
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Fix %d cards with validation errors", errorCount),
			Impact: models.ImpactHigh,
			Effort: effort,
			Description: "These cards have critical validation errors that prevent " +
				"effective learning (e.g., malformed cloze deletions).",
			AffectedCardIDs: affected,
		})
	}

	// 警告レベルの問題への対処
	warningCount := report.IssuesBySeverity[models.SeverityWarning]
	if warningCount > 5 {
		if top, ok := topIssue(report.TopIssues); ok {
			effort := models.EffortQuick
			if top.Count > 10 {
				effort = models.EffortModerate
			}
			affected := report.ProblematicCardIDs
			if len(affected) > top.Count {
				affected = affected[:top.Count]
			}
			readableRule := strings.ToLower(strings.ReplaceAll(top.Rule, "_", " "))
			recs = append(recs, models.Recommendation{
				Title:  fmt.Sprintf("Address %d cards with %s", top.Count, readableRule),
				Impact: models.ImpactHigh,
				Effort: effort,
				Description: fmt.Sprintf("Most common issue: %s. These reduce retention efficiency.",
					readableRule),
				AffectedCardIDs: affected,
			})
		}
	}

	// タグ一貫性の改善
	if report.DeckPatterns.TagConsistency < 0.5 {
		untaggedEstimate := int(float64(report.TotalCards) * (1 - report.DeckPatterns.TagConsistency))
		effort := models.EffortModerate
		if untaggedEstimate < 20 {
			effort = models.EffortQuick
		}
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Add tags to %d untagged cards", untaggedEstimate),
			Impact: models.ImpactMedium,
			Effort: effort,
			Description: fmt.Sprintf("Only %.0f%% of cards have tags. Tags improve organization and selective studying.",
				report.DeckPatterns.TagConsistency*100),
		})
	}

	// カードタイプ分布の偏り
	if dominantType, ratio, ok := dominantCardType(report.DeckPatterns.TypeDistribution); ok && ratio > 0.8 {
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Diversify card types (currently %.0f%% %s)", ratio*100, dominantType),
			Impact: models.ImpactMedium,
			Effort: models.EffortModerate,
			Description: fmt.Sprintf("Deck is heavily %s cards. Consider converting some to other formats for variety and better retention.",
				dominantType),
		})
	}

	return recs
}

// performanceRecommendations はパフォーマンスレポートに基づく推奨を生成します
func (e *RecommendationEngine) performanceRecommendations(report *models.PerformanceReport) []models.Recommendation {
	var recs []models.Recommendation

	// 苦戦カードへの対処
	if len(report.StrugglingCards) > 0 {
		count := len(report.StrugglingCards)
		effort := models.EffortModerate
		if count <= 5 {
			effort = models.EffortQuick
		}
		affected := make([]int64, 0, count)
		for _, c := range report.StrugglingCards {
			affected = append(affected, c.NoteID)
		}
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Review and fix %d struggling cards", count),
			Impact: models.ImpactHigh,
			Effort: effort,
			Description: fmt.Sprintf("These %d cards have ease <1.5 or lapses >2. They likely need clarification, splitting, or simplification.",
				count),
			AffectedCardIDs: affected,
		})
	}

	// 低い保持率の改善
	if report.RetentionRate < 0.75 {
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Improve retention rate (currently %.0f%%)", report.RetentionRate*100),
			Impact: models.ImpactHigh,
			Effort: models.EffortModerate,
			Description: "Retention below 75% indicates cards may be too difficult. " +
				"Consider reducing new cards per day and reviewing struggling cards.",
		})
	}

	// 高い失念率への対処
	if report.LapseRate > 0.25 {
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Reduce lapse rate (currently %.0f%%)", report.LapseRate*100),
			Impact: models.ImpactMedium,
			Effort: models.EffortModerate,
			Description: "High lapse rate suggests cards are being forgotten frequently. " +
				"Review card clarity and consider splitting complex cards.",
		})
	}

	return recs
}

// combinedRecommendations は品質とパフォーマンスの相関から推奨を生成します
func (e *RecommendationEngine) combinedRecommendations(qualityReport *models.QualityReport, performanceReport *models.PerformanceReport) []models.Recommendation {
	var recs []models.Recommendation

	// 品質問題と学習不振が重なっているカードは修正効果が最も高い
	strugglingIDs := make(map[int64]bool, len(performanceReport.StrugglingCards))
	for _, c := range performanceReport.StrugglingCards {
		strugglingIDs[c.NoteID] = true
	}

	var overlap []int64
	for _, noteID := range qualityReport.ProblematicCardIDs {
		if strugglingIDs[noteID] {
			overlap = append(overlap, noteID)
		}
	}

	if len(overlap) > 0 {
		affected := overlap
		if len(affected) > 10 {
			affected = affected[:10]
		}
		recs = append(recs, models.Recommendation{
			Title:  fmt.Sprintf("Fix %d cards with both quality and performance issues", len(overlap)),
			Impact: models.ImpactHigh,
			Effort: models.EffortQuick,
			Description: "These cards have low performance AND quality issues. " +
				"Clear wins: fixing quality will likely improve retention.",
			AffectedCardIDs: affected,
			ExampleBeforeAfter: "Example: Split 'Describe mitochondria structure AND function' -> " +
				"Card 1: 'What is the structure of mitochondria?' + " +
				"Card 2: 'What is the function of mitochondria?'",
		})
	}

	warningCount := qualityReport.IssuesBySeverity[models.SeverityWarning]
	if performanceReport.RetentionRate < 0.8 && warningCount > 10 {
		recs = append(recs, models.Recommendation{
			Title:  "Address quality warnings to improve retention",
			Impact: models.ImpactHigh,
			Effort: models.EffortModerate,
			Description: fmt.Sprintf("Retention at %.0f%% with %d quality warnings. Fixing card quality issues will likely improve retention.",
				performanceReport.RetentionRate*100, warningCount),
		})
	}

	return recs
}

// topIssue は件数が正の最初の問題を返します
func topIssue(issues []models.IssueCount) (models.IssueCount, bool) {
	for _, issue := range issues {
		if issue.Count > 0 {
			return issue, true
		}
	}
	return models.IssueCount{}, false
}

// dominantCardType は最も割合の大きいカードタイプを返します
func dominantCardType(distribution map[string]float64) (string, float64, bool) {
	if len(distribution) == 0 {
		return "", 0, false
	}

	// mapの走査順に依存しないよう名前でソートしてから比較する
	names := make([]string, 0, len(distribution))
	for name := range distribution {
		names = append(names, name)
	}
	sort.Strings(names)

	dominant, ratio := "", -1.0
	for _, name := range names {
		if distribution[name] > ratio {
			dominant, ratio = name, distribution[name]
		}
	}
	return dominant, ratio, true
}

// calculatePriority は効果と作業量の比から優先度スコアを計算します
func calculatePriority(rec models.Recommendation) float64 {
	impact := impactScoreMedium
	switch rec.Impact {
	case models.ImpactHigh:
		impact = impactScoreHigh
	case models.ImpactMedium:
		impact = impactScoreMedium
	case models.ImpactLow:
		impact = impactScoreLow
	}

	effort := effortScoreModerate
	switch rec.Effort {
	case models.EffortQuick:
		effort = effortScoreQuick
	case models.EffortModerate:
		effort = effortScoreModerate
	case models.EffortLarge:
		effort = effortScoreLarge
	}

	return math.Round(impact/effort*100) / 100
}
