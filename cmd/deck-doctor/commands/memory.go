package commands

import (
	"context"
	"fmt"

	"github.com/jinford/deck-doctor/internal/platform/database"
	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/jinford/deck-doctor/pkg/repository"
	"github.com/urfave/cli/v3"
)

// MemoryRationaleAction はカード設計判断の根拠を記録するコマンドのアクション
func MemoryRationaleAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	repo, err := appCtx.MemoryRW(ctx)
	if err != nil {
		return err
	}

	rationale, err := repo.StoreCardRationale(ctx, &models.CardRationale{
		AnkiNoteID:             int64(cmd.Int("note-id")),
		CardTypeReasoning:      cmd.String("reasoning"),
		WordingNotes:           cmd.String("wording"),
		AlternativesConsidered: splitTags(cmd.String("alternatives")),
	})
	if err != nil {
		return fmt.Errorf("根拠の記録に失敗: %w", err)
	}

	fmt.Printf("根拠を記録しました (ID: %s) ノートID: %d\n", rationale.ID, rationale.AnkiNoteID)
	return nil
}

// MemoryFeedbackAction はカードへのフィードバックを記録するコマンドのアクション
func MemoryFeedbackAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	repo, err := appCtx.MemoryRW(ctx)
	if err != nil {
		return err
	}

	feedback, err := repo.RecordFeedback(ctx, &models.CardFeedback{
		AnkiNoteID:    int64(cmd.Int("note-id")),
		FeedbackType:  cmd.String("type"),
		UserComment:   cmd.String("comment"),
		LLMReflection: cmd.String("reflection"),
		ActionTaken:   cmd.String("action"),
	})
	if err != nil {
		return fmt.Errorf("フィードバックの記録に失敗: %w", err)
	}

	fmt.Printf("フィードバックを記録しました (ID: %s) ノートID: %d\n", feedback.ID, feedback.AnkiNoteID)
	fmt.Printf("種別: %s\n", feedback.FeedbackType)
	if feedback.ActionTaken != "" {
		fmt.Printf("対応: %s\n", feedback.ActionTaken)
	}
	return nil
}

// MemoryLinkAction はカードを学習概念に紐付けるコマンドのアクション
func MemoryLinkAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	db, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}

	// 概念の作成と紐付けを同一トランザクションで行う
	provider := database.NewTransactionProvider(db.Pool)
	link, err := database.Transact(ctx, provider, func(a *database.Adapter) (*models.ConceptLink, error) {
		return a.Memory.LinkCardToConcept(ctx, &models.ConceptLink{
			AnkiNoteID:   int64(cmd.Int("note-id")),
			ConceptName:  cmd.String("concept"),
			Deck:         cmd.String("deck"),
			Relationship: cmd.String("relationship"),
		}, cmd.String("description"))
	})
	if err != nil {
		return fmt.Errorf("概念への紐付けに失敗: %w", err)
	}

	msg := fmt.Sprintf("カード %d を概念 %q に紐付けました", link.AnkiNoteID, cmd.String("concept"))
	if link.Relationship != "" {
		msg += fmt.Sprintf(" (関係: %s)", link.Relationship)
	}
	fmt.Println(msg)
	return nil
}

// MemoryCoverageAction はデッキの概念カバレッジを表示するコマンドのアクション
// 概念は紐付くカード数で「十分」「手薄」「未カバー」に分類される
func MemoryCoverageAction(ctx context.Context, cmd *cli.Command) error {
	deck := cmd.String("deck")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewMemoryRepositoryR(database.Pool)

	coverage, err := repo.GetConceptCoverage(ctx, deck)
	if err != nil {
		return fmt.Errorf("カバレッジの取得に失敗: %w", err)
	}

	if len(coverage) == 0 {
		fmt.Printf("デッキ %q に記録された概念はありません\n", deck)
		fmt.Println("deck-doctor memory link でカードを概念に紐付けるとカバレッジを追跡できます")
		return nil
	}

	var wellCovered, sparse, uncovered []models.ConceptCoverage
	for _, c := range coverage {
		switch {
		case c.CardCount >= 3:
			wellCovered = append(wellCovered, c)
		case c.CardCount >= 1:
			sparse = append(sparse, c)
		default:
			uncovered = append(uncovered, c)
		}
	}

	fmt.Printf("デッキ %q の概念カバレッジ:\n\n", deck)

	if len(wellCovered) > 0 {
		fmt.Println("十分 (3枚以上):")
		for _, c := range wellCovered {
			fmt.Printf("  - %s: %d枚%s\n", c.ConceptName, c.CardCount, coverageDesc(c))
		}
		fmt.Println()
	}
	if len(sparse) > 0 {
		fmt.Println("手薄 (1-2枚):")
		for _, c := range sparse {
			fmt.Printf("  - %s: %d枚%s\n", c.ConceptName, c.CardCount, coverageDesc(c))
		}
		fmt.Println()
	}
	if len(uncovered) > 0 {
		fmt.Println("未カバー (0枚):")
		for _, c := range uncovered {
			fmt.Printf("  - %s%s\n", c.ConceptName, coverageDesc(c))
		}
		fmt.Println()
	}

	fmt.Printf("合計: %d概念を追跡中\n", len(coverage))
	return nil
}

// coverageDesc は概念の説明を表示用サフィックスに整形する
func coverageDesc(c models.ConceptCoverage) string {
	if c.Description == "" {
		return ""
	}
	return " - " + c.Description
}

// MemorySessionSaveAction はセッションコンテキストを保存するコマンドのアクション
func MemorySessionSaveAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	repo, err := appCtx.MemoryRW(ctx)
	if err != nil {
		return err
	}

	session, err := repo.SaveSessionContext(ctx, &models.SessionContext{
		Deck:             cmd.String("deck"),
		SourceMaterial:   cmd.String("source-material"),
		LearningGoals:    cmd.String("goals"),
		CoverageStrategy: cmd.String("strategy"),
		Observations:     cmd.String("observations"),
	})
	if err != nil {
		return fmt.Errorf("セッションコンテキストの保存に失敗: %w", err)
	}

	fmt.Printf("セッションコンテキストを保存しました (ID: %s) デッキ: %s\n", session.ID, session.Deck)
	return nil
}

// MemorySessionShowAction は直近のセッションコンテキストを表示するコマンドのアクション
func MemorySessionShowAction(ctx context.Context, cmd *cli.Command) error {
	deck := cmd.String("deck")
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
	repo := repository.NewMemoryRepositoryR(database.Pool)

	sessions, err := repo.GetSessionContext(ctx, deck, limit)
	if err != nil {
		return fmt.Errorf("セッションコンテキストの取得に失敗: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Printf("デッキ %q のセッションコンテキストはありません\n", deck)
		return nil
	}

	fmt.Printf("デッキ %q の直近セッション (%d件):\n", deck, len(sessions))
	for i, s := range sessions {
		fmt.Printf("\n[%d] %s\n", i+1, s.CreatedAt.Format("2006-01-02 15:04"))
		if s.SourceMaterial != "" {
			fmt.Printf("  教材: %s\n", s.SourceMaterial)
		}
		if s.LearningGoals != "" {
			fmt.Printf("  学習目標: %s\n", s.LearningGoals)
		}
		if s.CoverageStrategy != "" {
			fmt.Printf("  カバレッジ戦略: %s\n", s.CoverageStrategy)
		}
		if s.Observations != "" {
			fmt.Printf("  所感: %s\n", s.Observations)
		}
	}

	return nil
}
