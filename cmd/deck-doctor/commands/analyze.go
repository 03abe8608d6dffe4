package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/deck-doctor/pkg/analyzer"
	"github.com/jinford/deck-doctor/pkg/formatting"
	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/urfave/cli/v3"
)

// AnalyzeQualityAction はデッキの品質を分析するコマンドのアクション
func AnalyzeQualityAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	sampleSize := cmd.Int("sample-size")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	qa := analyzer.NewDeckQualityAnalyzer(appCtx.Anki, appCtx.Validator)
	report, err := qa.Analyze(ctx, deckName, sampleSize)
	if err != nil {
		return explainAnkiError(err)
	}

	fmt.Println(formatting.FormatQualityReport(report, deckName, sampleSize))

	saveAnalysis(ctx, appCtx, &models.DeckAnalysis{
		DeckName:     deckName,
		AnalysisType: models.AnalysisTypeQuality,
		OverallScore: &report.Score,
		TotalCards:   report.TotalCards,
		Metadata: map[string]any{
			"sample_size":     sampleSize,
			"tag_consistency": report.DeckPatterns.TagConsistency,
		},
	})

	return nil
}

// AnalyzePerformanceAction はデッキの学習成績を分析するコマンドのアクション
func AnalyzePerformanceAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	minReviews := cmd.Int("min-reviews")
	lookbackDays := cmd.Int("lookback-days")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	pa := analyzer.NewDeckPerformanceAnalyzer(appCtx.Anki)
	report, err := pa.Analyze(ctx, deckName, minReviews, lookbackDays)
	if err != nil {
		return explainAnkiError(err)
	}

	fmt.Println(formatting.FormatPerformanceReport(report, deckName))

	retention := report.RetentionRate
	saveAnalysis(ctx, appCtx, &models.DeckAnalysis{
		DeckName:     deckName,
		AnalysisType: models.AnalysisTypePerformance,
		OverallScore: &retention,
		TotalCards:   len(report.StrugglingCards),
		Metadata: map[string]any{
			"min_reviews":   minReviews,
			"total_reviews": report.TotalReviews,
			"lapse_rate":    report.LapseRate,
		},
	})

	return nil
}

// saveAnalysis は分析結果を履歴データベースに記録する
// 記録の失敗は分析コマンド自体の失敗にしない
func saveAnalysis(ctx context.Context, appCtx *AppContext, analysis *models.DeckAnalysis) {
	repo := appCtx.HistoryRW(ctx)
	if repo == nil {
		return
	}
	if _, err := repo.SaveDeckAnalysis(ctx, analysis); err != nil {
		slog.Warn("分析履歴の保存に失敗", "deck", analysis.DeckName, "type", analysis.AnalysisType, "error", err)
	}
}
