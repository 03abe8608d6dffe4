package repository

import (
	"context"
	"fmt"
)

// schemaStatements は履歴データベースのスキーマ定義です
// すべて IF NOT EXISTS で冪等に実行できます
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS generations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source_type TEXT NOT NULL,
		source_path TEXT,
		source_metadata JSONB,
		generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS generated_cards (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		generation_id UUID REFERENCES generations(id),
		anki_note_id BIGINT NOT NULL,
		card_type TEXT NOT NULL,
		front_or_text TEXT NOT NULL,
		back TEXT,
		deck TEXT NOT NULL,
		tags JSONB,
		validation_warnings JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS deck_analyses (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		deck_name TEXT NOT NULL,
		analysis_type TEXT NOT NULL,
		overall_score DOUBLE PRECISION,
		total_cards INTEGER NOT NULL DEFAULT 0,
		metadata JSONB,
		analyzed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS card_rationales (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		anki_note_id BIGINT NOT NULL,
		card_type_reasoning TEXT NOT NULL,
		wording_notes TEXT,
		alternatives_considered JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS card_feedback (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		anki_note_id BIGINT NOT NULL,
		feedback_type TEXT NOT NULL,
		user_comment TEXT,
		llm_reflection TEXT,
		action_taken TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS concepts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		deck TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (deck, name)
	)`,
	`CREATE TABLE IF NOT EXISTS concept_links (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		anki_note_id BIGINT NOT NULL,
		concept_id UUID NOT NULL REFERENCES concepts(id),
		relationship TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS session_contexts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		deck TEXT NOT NULL,
		source_material TEXT,
		learning_goals TEXT,
		coverage_strategy TEXT,
		observations TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_cards_generation ON generated_cards(generation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_cards_created ON generated_cards(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_generations_source ON generations(source_path)`,
	`CREATE INDEX IF NOT EXISTS idx_deck_analyses_deck ON deck_analyses(deck_name, analyzed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_card_rationales_note ON card_rationales(anki_note_id)`,
	`CREATE INDEX IF NOT EXISTS idx_card_feedback_note ON card_feedback(anki_note_id)`,
	`CREATE INDEX IF NOT EXISTS idx_concept_links_concept ON concept_links(concept_id)`,
	`CREATE INDEX IF NOT EXISTS idx_session_contexts_deck ON session_contexts(deck, created_at DESC)`,
}

// InitSchema は履歴データベースのテーブルとインデックスを作成します
func InitSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
