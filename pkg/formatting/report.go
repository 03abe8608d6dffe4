package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jinford/deck-doctor/pkg/models"
)

// easeBucketOrder は表示順を固定するためのease分布バケットの並びです
var easeBucketOrder = []struct {
	bucket string
	label  string
}{
	{"<1.5", "Struggling"},
	{"1.5-2.0", "Difficult"},
	{"2.0-2.5", "Normal"},
	{"2.5-3.0", "Easy"},
	{">3.0", "Very Easy"},
}

// maturityOrder は成熟度の表示順とラベルです
var maturityOrder = []struct {
	level string
	label string
}{
	{"young", "Young (<21 days)"},
	{"mature", "Mature (21-90 days)"},
	{"very_mature", "Very Mature (>90 days)"},
}

// FormatQualityReport は品質レポートを人間向けのテキストに整形します
// sampleSize が正かつ総カード数未満の場合、サンプル分析であることを明記します
func FormatQualityReport(report *models.QualityReport, deckName string, sampleSize int) string {
	var b strings.Builder

	sampleText := ""
	if sampleSize > 0 && sampleSize <= report.TotalCards {
		sampleText = fmt.Sprintf(" (analyzed sample of %d)", report.TotalCards)
	}
	fmt.Fprintf(&b, "Deck Quality Analysis: %q%s\n\n", deckName, sampleText)

	fmt.Fprintf(&b, "Overall Score: %.1f/100 ", report.Score)
	switch {
	case report.Score >= 80:
		b.WriteString("(Excellent)\n")
	case report.Score >= 60:
		b.WriteString("(Good)\n")
	case report.Score >= 40:
		b.WriteString("(Needs Improvement)\n")
	default:
		b.WriteString("(Poor)\n")
	}

	fmt.Fprintf(&b, "Total Cards: %d\n\n", report.TotalCards)

	b.WriteString("Issue Breakdown:\n")
	fmt.Fprintf(&b, "  Errors: %d\n", report.IssuesBySeverity[models.SeverityError])
	fmt.Fprintf(&b, "  Warnings: %d\n", report.IssuesBySeverity[models.SeverityWarning])
	fmt.Fprintf(&b, "  Suggestions: %d\n\n", report.IssuesBySeverity[models.SeveritySuggestion])

	if len(report.TopIssues) > 0 {
		b.WriteString("Top Issues:\n")
		for i, issue := range report.TopIssues {
			fmt.Fprintf(&b, "%d. %s: %d cards\n", i+1, readableRuleName(issue.Rule), issue.Count)
		}
		b.WriteString("\n")
	}

	patterns := report.DeckPatterns
	b.WriteString("Deck Patterns:\n")
	fmt.Fprintf(&b, "  Tag Consistency: %.0f%% ", patterns.TagConsistency*100)
	switch {
	case patterns.TagConsistency < 0.3:
		b.WriteString("(Low - consider adding tags)\n")
	case patterns.TagConsistency < 0.7:
		b.WriteString("(Moderate)\n")
	default:
		b.WriteString("(Good)\n")
	}

	fmt.Fprintf(&b, "  HTML Usage: %.0f%% of cards\n", patterns.HTMLUsagePercent)
	fmt.Fprintf(&b, "  Avg Field Length: %.0f characters\n\n", patterns.AvgFieldLength)

	b.WriteString("Card Type Distribution:\n")
	maxRatio := 0.0
	for _, cardType := range sortedKeys(patterns.TypeDistribution) {
		ratio := patterns.TypeDistribution[cardType]
		fmt.Fprintf(&b, "  %s: %.0f%%\n", cardType, ratio*100)
		if ratio > maxRatio {
			maxRatio = ratio
		}
	}
	if maxRatio > 0.8 {
		b.WriteString("\n! Deck heavily uses one card type - consider diversifying\n")
	}

	b.WriteString("\nNext Steps:\n")
	if report.Score < 60 {
		b.WriteString("- Run 'deck-doctor recommend' for a prioritized improvement plan\n")
	}
	b.WriteString("- Run 'deck-doctor card inspect <note-id>' to review specific problematic cards\n")
	b.WriteString("- Run 'deck-doctor analyze performance' to correlate with study metrics\n")

	return strings.TrimSpace(b.String())
}

// FormatPerformanceReport はパフォーマンスレポートを人間向けのテキストに整形します
func FormatPerformanceReport(report *models.PerformanceReport, deckName string) string {
	var b strings.Builder

	totalCards := 0
	for _, count := range report.MaturityBreakdown {
		totalCards += count
	}

	fmt.Fprintf(&b, "Deck Performance Analysis: %q\n\n", deckName)

	if totalCards == 0 {
		b.WriteString("No reviewed cards found in this deck.\n")
		b.WriteString("Study some cards first, then run this analysis again.")
		return b.String()
	}

	retentionPct := report.RetentionRate * 100
	fmt.Fprintf(&b, "Retention Rate: %.1f%% ", retentionPct)
	switch {
	case retentionPct >= 85:
		b.WriteString("(Excellent - target: 85-90%)\n")
	case retentionPct >= 75:
		b.WriteString("(Good - target: 85-90%)\n")
	case retentionPct >= 65:
		b.WriteString("(Fair - consider reviewing struggling cards)\n")
	default:
		b.WriteString("(Low - cards may be too difficult)\n")
	}

	fmt.Fprintf(&b, "Total Reviews: %d\n", report.TotalReviews)
	fmt.Fprintf(&b, "Cards Analyzed: %d\n\n", totalCards)

	b.WriteString("Ease Distribution:\n")
	for _, entry := range easeBucketOrder {
		count := report.EaseDistribution[entry.bucket]
		pct := float64(count) / float64(totalCards) * 100
		fmt.Fprintf(&b, "  %s (%s): %d (%.0f%%)\n", entry.bucket, entry.label, count, pct)
	}

	fmt.Fprintf(&b, "\nLapse Rate: %.1f%% ", report.LapseRate*100)
	switch {
	case report.LapseRate > 0.3:
		b.WriteString("(High - many cards being forgotten)\n")
	case report.LapseRate > 0.15:
		b.WriteString("(Moderate)\n")
	default:
		b.WriteString("(Low - good retention)\n")
	}

	if len(report.StrugglingCards) > 0 {
		fmt.Fprintf(&b, "\nStruggling Cards (%d):\n", len(report.StrugglingCards))
		b.WriteString("Cards with ease <1.5 OR lapses >2:\n\n")

		shown := report.StrugglingCards
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for i, card := range shown {
			fmt.Fprintf(&b, "%d. Note ID %d\n", i+1, card.NoteID)
			fmt.Fprintf(&b, "   Ease: %.2f, Lapses: %d, Interval: %d days\n", card.Ease, card.Lapses, card.IntervalDays)
		}
		if remaining := len(report.StrugglingCards) - 10; remaining > 0 {
			fmt.Fprintf(&b, "\n...and %d more struggling cards\n", remaining)
		}
	}

	b.WriteString("\nMaturity Breakdown:\n")
	for _, entry := range maturityOrder {
		count := report.MaturityBreakdown[entry.level]
		pct := float64(count) / float64(totalCards) * 100
		fmt.Fprintf(&b, "  %s: %d (%.0f%%)\n", entry.label, count, pct)
	}

	b.WriteString("\nNext Steps:\n")
	if len(report.StrugglingCards) > 0 {
		fmt.Fprintf(&b, "- Review %d struggling cards\n", len(report.StrugglingCards))
		b.WriteString("- Run 'deck-doctor card inspect <note-id>' to examine specific cards\n")
		b.WriteString("- Run 'deck-doctor recommend' for prioritized fixes\n")
	}
	if retentionPct < 75 {
		b.WriteString("- Consider reducing new cards per day\n")
		b.WriteString("- Check if cards are too ambiguous or complex\n")
	}
	b.WriteString("- Run 'deck-doctor analyze quality' to check for card quality issues\n")

	return strings.TrimSpace(b.String())
}

// FormatRecommendations は推奨アクション一覧を優先度の階層別に整形します
func FormatRecommendations(recommendations []models.Recommendation, deckName string) string {
	var b strings.Builder

	if len(recommendations) == 0 {
		fmt.Fprintf(&b, "Deck Recommendations: %q\n\n", deckName)
		b.WriteString("No recommendations - deck is in good shape!\n\n")
		b.WriteString("Continue studying and run periodic analyses to maintain quality.")
		return b.String()
	}

	fmt.Fprintf(&b, "Deck Recommendations: %q\n", deckName)
	fmt.Fprintf(&b, "Generated %d prioritized recommendations\n\n", len(recommendations))

	var quickWins, scheduleSoon, consider []models.Recommendation
	for _, rec := range recommendations {
		switch {
		case rec.PriorityScore >= 5.0:
			quickWins = append(quickWins, rec)
		case rec.PriorityScore >= 2.0:
			scheduleSoon = append(scheduleSoon, rec)
		default:
			consider = append(consider, rec)
		}
	}

	idx := 1
	if len(quickWins) > 0 {
		b.WriteString("=== QUICK WINS (High Impact, Low Effort) ===\n\n")
		for _, rec := range quickWins {
			writeRecommendation(&b, idx, rec)
			idx++
		}
	}

	if len(scheduleSoon) > 0 {
		b.WriteString("\n=== SCHEDULE SOON (Good Impact/Effort Ratio) ===\n\n")
		for _, rec := range scheduleSoon {
			writeRecommendation(&b, idx, rec)
			idx++
		}
	}

	if len(consider) > 0 {
		b.WriteString("\n=== CONSIDER (Lower Priority) ===\n\n")
		for _, rec := range consider {
			writeRecommendation(&b, idx, rec)
			idx++
		}
	}

	b.WriteString("\n=== TRACK PROGRESS ===\n")
	b.WriteString("Run this analysis monthly to track improvements.\n")
	b.WriteString("Run 'deck-doctor card inspect <note-id>' to examine specific cards.\n")

	return strings.TrimSpace(b.String())
}

func writeRecommendation(b *strings.Builder, idx int, rec models.Recommendation) {
	fmt.Fprintf(b, "%d. %s [Priority: %.1f]\n", idx, rec.Title, rec.PriorityScore)
	fmt.Fprintf(b, "   Impact: %s | Effort: %s\n", titleCase(string(rec.Impact)), titleCase(string(rec.Effort)))
	fmt.Fprintf(b, "   %s\n", rec.Description)

	if len(rec.AffectedCardIDs) > 0 {
		fmt.Fprintf(b, "   Affected cards: %d\n", len(rec.AffectedCardIDs))
	}
	if rec.ExampleBeforeAfter != "" {
		fmt.Fprintf(b, "   %s\n", rec.ExampleBeforeAfter)
	}
	b.WriteString("\n")
}

// readableRuleName はルール識別子を表示用の名前に変換します
func readableRuleName(rule string) string {
	words := strings.Split(rule, "_")
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
