package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/jinford/deck-doctor/pkg/repository"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// HistoryGenerationsAction はカード生成セッションの履歴を表示するコマンドのアクション
func HistoryGenerationsAction(ctx context.Context, cmd *cli.Command) error {
	sourceType := cmd.String("source-type")
	limit := cmd.Int("limit")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewHistoryRepositoryR(database.Pool)

	generations, err := repo.GetGenerationHistory(ctx, models.GenerationSourceType(sourceType), limit)
	if err != nil {
		return fmt.Errorf("生成履歴の取得に失敗: %w", err)
	}

	if len(generations) == 0 {
		fmt.Println("生成履歴はありません")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Source", "Path", "Cards", "Generated At")
	for _, g := range generations {
		table.Append(
			g.ID.String(),
			string(g.SourceType),
			truncateString(g.SourcePath, 40),
			fmt.Sprintf("%d", g.CardCount),
			g.GeneratedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()

	return nil
}

// HistoryCardsAction は生成済みカードの履歴を表示するコマンドのアクション
// --source を指定するとそのソースから生成されたカードに絞り込む
func HistoryCardsAction(ctx context.Context, cmd *cli.Command) error {
	sourcePath := cmd.String("source")
	limit := cmd.Int("limit")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewHistoryRepositoryR(database.Pool)

	var cards []models.GeneratedCard
	if sourcePath != "" {
		cards, err = repo.GetCardsBySource(ctx, sourcePath)
	} else {
		cards, err = repo.GetRecentCards(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("カード履歴の取得に失敗: %w", err)
	}

	if len(cards) == 0 {
		fmt.Println("カード履歴はありません")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Note ID", "Type", "Deck", "Front/Text", "Warnings", "Created At")
	for _, c := range cards {
		table.Append(
			fmt.Sprintf("%d", c.AnkiNoteID),
			string(c.CardType),
			c.Deck,
			truncateString(c.FrontOrText, 50),
			fmt.Sprintf("%d", len(c.ValidationWarnings)),
			c.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()

	return nil
}

// HistoryAnalysesAction はデッキ分析の実行履歴を表示するコマンドのアクション
func HistoryAnalysesAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	limit := cmd.Int("limit")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewHistoryRepositoryR(database.Pool)

	analyses, err := repo.GetAnalysisHistory(ctx, deckName, limit)
	if err != nil {
		return fmt.Errorf("分析履歴の取得に失敗: %w", err)
	}

	if len(analyses) == 0 {
		fmt.Println("分析履歴はありません")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Deck", "Type", "Score", "Cards", "Analyzed At")
	for _, a := range analyses {
		score := "-"
		if a.OverallScore != nil {
			score = fmt.Sprintf("%.1f", *a.OverallScore)
		}
		table.Append(
			a.DeckName,
			string(a.AnalysisType),
			score,
			fmt.Sprintf("%d", a.TotalCards),
			a.AnalyzedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()

	return nil
}

// HistoryStatsAction は生成済みカードのバリデーション統計を表示するコマンドのアクション
func HistoryStatsAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewHistoryRepositoryR(database.Pool)

	stats, err := repo.GetValidationStats(ctx)
	if err != nil {
		return fmt.Errorf("統計の取得に失敗: %w", err)
	}

	fmt.Println("生成カードのバリデーション統計:")
	fmt.Printf("  総カード数:   %d\n", stats.TotalCards)
	fmt.Printf("  警告あり:     %d\n", stats.CardsWithWarning)
	fmt.Printf("  警告率:       %.2f%%\n", stats.WarningRate)

	return nil
}
