package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jinford/deck-doctor/pkg/models"
)

// DBTX はクエリ実行に必要な最小限のインターフェースです
// *pgxpool.Pool と pgx.Tx の両方が満たします
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HistoryRepositoryR は生成・分析履歴に対する読み取り専用のデータベース操作を提供します
type HistoryRepositoryR struct {
	db DBTX
}

// NewHistoryRepositoryR は新しい読み取り専用リポジトリを作成します
func NewHistoryRepositoryR(db DBTX) *HistoryRepositoryR {
	return &HistoryRepositoryR{db: db}
}

// HistoryRepositoryRW は HistoryRepositoryR を埋め込み、書き込み操作を提供します
type HistoryRepositoryRW struct {
	*HistoryRepositoryR
}

// NewHistoryRepositoryRW は読み書き可能なリポジトリを作成します
func NewHistoryRepositoryRW(db DBTX) *HistoryRepositoryRW {
	return &HistoryRepositoryRW{HistoryRepositoryR: NewHistoryRepositoryR(db)}
}

// === Create操作 ===

// CreateGeneration は新しいカード生成セッションを記録します
func (rw *HistoryRepositoryRW) CreateGeneration(ctx context.Context, sourceType models.GenerationSourceType, sourcePath string, metadata map[string]any) (*models.Generation, error) {
	metadataJSON, err := marshalOrNil(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	gen := &models.Generation{
		SourceType: sourceType,
		SourcePath: sourcePath,
		Metadata:   metadata,
	}
	err = rw.db.QueryRow(ctx, `
		INSERT INTO generations (source_type, source_path, source_metadata)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, generated_at`,
		string(sourceType), sourcePath, metadataJSON,
	).Scan(&gen.ID, &gen.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation: %w", err)
	}
	return gen, nil
}

// AddGeneratedCard は生成セッションにAnkiノートを紐付けます
func (rw *HistoryRepositoryRW) AddGeneratedCard(ctx context.Context, card *models.GeneratedCard) (*models.GeneratedCard, error) {
	tagsJSON, err := marshalOrNil(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	warningsJSON, err := marshalOrNil(card.ValidationWarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation warnings: %w", err)
	}

	saved := *card
	err = rw.db.QueryRow(ctx, `
		INSERT INTO generated_cards (
			generation_id, anki_note_id, card_type,
			front_or_text, back, deck, tags, validation_warnings
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING id, created_at`,
		card.GenerationID, card.AnkiNoteID, string(card.CardType),
		card.FrontOrText, card.Back, card.Deck, tagsJSON, warningsJSON,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add generated card: %w", err)
	}
	return &saved, nil
}

// SaveDeckAnalysis はデッキ分析の実行結果を記録します
func (rw *HistoryRepositoryRW) SaveDeckAnalysis(ctx context.Context, analysis *models.DeckAnalysis) (*models.DeckAnalysis, error) {
	metadataJSON, err := marshalOrNil(analysis.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	saved := *analysis
	err = rw.db.QueryRow(ctx, `
		INSERT INTO deck_analyses (deck_name, analysis_type, overall_score, total_cards, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, analyzed_at`,
		analysis.DeckName, string(analysis.AnalysisType), analysis.OverallScore, analysis.TotalCards, metadataJSON,
	).Scan(&saved.ID, &saved.AnalyzedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck analysis: %w", err)
	}
	return &saved, nil
}

// === Read操作 ===

// GetGenerationHistory は最近の生成セッションをカード数付きで返します
// sourceType が空の場合は全種別を対象とします
func (r *HistoryRepositoryR) GetGenerationHistory(ctx context.Context, sourceType models.GenerationSourceType, limit int) ([]models.Generation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			g.id,
			g.source_type,
			COALESCE(g.source_path, ''),
			g.source_metadata,
			g.generated_at,
			COUNT(gc.id) AS card_count
		FROM generations g
		LEFT JOIN generated_cards gc ON g.id = gc.generation_id
		WHERE $1 = '' OR g.source_type = $1
		GROUP BY g.id, g.source_type, g.source_path, g.source_metadata, g.generated_at
		ORDER BY g.generated_at DESC
		LIMIT $2`,
		string(sourceType), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation history: %w", err)
	}
	defer rows.Close()

	var generations []models.Generation
	for rows.Next() {
		var gen models.Generation
		var metadataJSON []byte
		if err := rows.Scan(&gen.ID, &gen.SourceType, &gen.SourcePath, &metadataJSON, &gen.GeneratedAt, &gen.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		if err := unmarshalOrNil(metadataJSON, &gen.Metadata); err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}
	return generations, rows.Err()
}

// GetCardsBySource は特定のソースから生成された全カードを返します
func (r *HistoryRepositoryR) GetCardsBySource(ctx context.Context, sourcePath string) ([]models.GeneratedCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			gc.id, gc.generation_id, gc.anki_note_id, gc.card_type,
			gc.front_or_text, COALESCE(gc.back, ''), gc.deck,
			gc.tags, gc.validation_warnings, gc.created_at
		FROM generated_cards gc
		JOIN generations g ON gc.generation_id = g.id
		WHERE g.source_path = $1
		ORDER BY gc.created_at DESC`,
		sourcePath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by source: %w", err)
	}
	defer rows.Close()

	return scanGeneratedCards(rows)
}

// GetRecentCards は最近作成されたカードを返します
func (r *HistoryRepositoryR) GetRecentCards(ctx context.Context, limit int) ([]models.GeneratedCard, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			gc.id, gc.generation_id, gc.anki_note_id, gc.card_type,
			gc.front_or_text, COALESCE(gc.back, ''), gc.deck,
			gc.tags, gc.validation_warnings, gc.created_at
		FROM generated_cards gc
		ORDER BY gc.created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent cards: %w", err)
	}
	defer rows.Close()

	return scanGeneratedCards(rows)
}

// GetAnalysisHistory はデッキの過去の分析実行を新しい順に返します
// deckName が空の場合は全デッキを対象とします
func (r *HistoryRepositoryR) GetAnalysisHistory(ctx context.Context, deckName string, limit int) ([]models.DeckAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, deck_name, analysis_type, overall_score, total_cards, metadata, analyzed_at
		FROM deck_analyses
		WHERE $1 = '' OR deck_name = $1
		ORDER BY analyzed_at DESC
		LIMIT $2`,
		deckName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis history: %w", err)
	}
	defer rows.Close()

	var analyses []models.DeckAnalysis
	for rows.Next() {
		var analysis models.DeckAnalysis
		var metadataJSON []byte
		if err := rows.Scan(&analysis.ID, &analysis.DeckName, &analysis.AnalysisType, &analysis.OverallScore, &analysis.TotalCards, &metadataJSON, &analysis.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck analysis: %w", err)
		}
		if err := unmarshalOrNil(metadataJSON, &analysis.Metadata); err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

// GetValidationStats は生成済みカード全体のバリデーション統計を返します
func (r *HistoryRepositoryR) GetValidationStats(ctx context.Context) (*models.ValidationStats, error) {
	stats := &models.ValidationStats{}
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE validation_warnings IS NOT NULL),
			COALESCE(ROUND(
				COUNT(*) FILTER (WHERE validation_warnings IS NOT NULL) * 100.0 / NULLIF(COUNT(*), 0),
				2), 0)
		FROM generated_cards`,
	).Scan(&stats.TotalCards, &stats.CardsWithWarning, &stats.WarningRate)
	if err != nil {
		return nil, fmt.Errorf("failed to get validation stats: %w", err)
	}
	return stats, nil
}

// scanGeneratedCards は generated_cards の行を走査してモデルに詰め替えます
func scanGeneratedCards(rows pgx.Rows) ([]models.GeneratedCard, error) {
	var cards []models.GeneratedCard
	for rows.Next() {
		var card models.GeneratedCard
		var tagsJSON, warningsJSON []byte
		if err := rows.Scan(
			&card.ID, &card.GenerationID, &card.AnkiNoteID, &card.CardType,
			&card.FrontOrText, &card.Back, &card.Deck,
			&tagsJSON, &warningsJSON, &card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generated card: %w", err)
		}
		if err := unmarshalOrNil(tagsJSON, &card.Tags); err != nil {
			return nil, err
		}
		if err := unmarshalOrNil(warningsJSON, &card.ValidationWarnings); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// marshalOrNil は値をJSONにエンコードします
// 値が空の場合はSQLのNULLとして扱えるよう nil を返します
func marshalOrNil(v any) ([]byte, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(value) == 0 {
			return nil, nil
		}
	case []string:
		if len(value) == 0 {
			return nil, nil
		}
	case []models.ValidationResult:
		if len(value) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

// unmarshalOrNil はNULL許容のJSONB列をデコードします
func unmarshalOrNil(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return nil
}
