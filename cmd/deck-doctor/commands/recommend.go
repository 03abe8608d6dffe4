package commands

import (
	"context"
	"fmt"

	"github.com/jinford/deck-doctor/pkg/analyzer"
	"github.com/jinford/deck-doctor/pkg/formatting"
	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/urfave/cli/v3"
)

// RecommendAction はデッキの改善提案を生成するコマンドのアクション
// 品質分析と成績分析の両方を実行し、結果を統合して優先度順に提示する
func RecommendAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	maxRecommendations := cmd.Int("max")
	sampleSize := cmd.Int("sample-size")
	minReviews := cmd.Int("min-reviews")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	qa := analyzer.NewDeckQualityAnalyzer(appCtx.Anki, appCtx.Validator)
	qualityReport, err := qa.Analyze(ctx, deckName, sampleSize)
	if err != nil {
		return explainAnkiError(err)
	}

	pa := analyzer.NewDeckPerformanceAnalyzer(appCtx.Anki)
	performanceReport, err := pa.Analyze(ctx, deckName, minReviews, 0)
	if err != nil {
		return explainAnkiError(err)
	}

	engine := analyzer.NewRecommendationEngine()
	recommendations := engine.Generate(qualityReport, performanceReport, maxRecommendations)

	fmt.Println(formatting.FormatRecommendations(recommendations, deckName))

	saveAnalysis(ctx, appCtx, &models.DeckAnalysis{
		DeckName:     deckName,
		AnalysisType: models.AnalysisTypeRecommendations,
		TotalCards:   qualityReport.TotalCards,
		Metadata: map[string]any{
			"recommendation_count": len(recommendations),
			"quality_score":        qualityReport.Score,
			"retention_rate":       performanceReport.RetentionRate,
		},
	})

	return nil
}
