package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jinford/deck-doctor/pkg/models"
)

// MemoryRepositoryR はカード設計の記憶（根拠・フィードバック・概念・セッション）への
// 読み取り専用のデータベース操作を提供します
type MemoryRepositoryR struct {
	db DBTX
}

// NewMemoryRepositoryR は新しい読み取り専用リポジトリを作成します
func NewMemoryRepositoryR(db DBTX) *MemoryRepositoryR {
	return &MemoryRepositoryR{db: db}
}

// MemoryRepositoryRW は MemoryRepositoryR を埋め込み、書き込み操作を提供します
type MemoryRepositoryRW struct {
	*MemoryRepositoryR
}

// NewMemoryRepositoryRW は読み書き可能なリポジトリを作成します
func NewMemoryRepositoryRW(db DBTX) *MemoryRepositoryRW {
	return &MemoryRepositoryRW{MemoryRepositoryR: NewMemoryRepositoryR(db)}
}

// === Create操作 ===

// StoreCardRationale はカード設計判断の根拠を保存します
func (rw *MemoryRepositoryRW) StoreCardRationale(ctx context.Context, rationale *models.CardRationale) (*models.CardRationale, error) {
	alternativesJSON, err := marshalOrNil(rationale.AlternativesConsidered)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alternatives: %w", err)
	}

	saved := *rationale
	err = rw.db.QueryRow(ctx, `
		INSERT INTO card_rationales (anki_note_id, card_type_reasoning, wording_notes, alternatives_considered)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, created_at`,
		rationale.AnkiNoteID, rationale.CardTypeReasoning, rationale.WordingNotes, alternativesJSON,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store card rationale: %w", err)
	}
	return &saved, nil
}

// RecordFeedback はカードへのユーザーフィードバックと内省を記録します
func (rw *MemoryRepositoryRW) RecordFeedback(ctx context.Context, feedback *models.CardFeedback) (*models.CardFeedback, error) {
	saved := *feedback
	err := rw.db.QueryRow(ctx, `
		INSERT INTO card_feedback (anki_note_id, feedback_type, user_comment, llm_reflection, action_taken)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, created_at`,
		feedback.AnkiNoteID, feedback.FeedbackType, feedback.UserComment, feedback.LLMReflection, feedback.ActionTaken,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}
	return &saved, nil
}

// LinkCardToConcept はカードを概念に紐付けます
// 概念が存在しない場合は作成してから紐付けます
func (rw *MemoryRepositoryRW) LinkCardToConcept(ctx context.Context, link *models.ConceptLink, conceptDescription string) (*models.ConceptLink, error) {
	conceptID, err := rw.createOrGetConcept(ctx, link.Deck, link.ConceptName, conceptDescription)
	if err != nil {
		return nil, err
	}

	saved := *link
	err = rw.db.QueryRow(ctx, `
		INSERT INTO concept_links (anki_note_id, concept_id, relationship)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at`,
		link.AnkiNoteID, conceptID, link.Relationship,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to link card to concept: %w", err)
	}
	return &saved, nil
}

// createOrGetConcept は概念を取得し、存在しない場合は作成します
func (rw *MemoryRepositoryRW) createOrGetConcept(ctx context.Context, deck, name, description string) (uuid.UUID, error) {
	// ON CONFLICT DO NOTHING はトランザクションを中断させないため、
	// 既存の概念がある場合は追加のSELECTで取得する
	var conceptID uuid.UUID
	err := rw.db.QueryRow(ctx, `
		INSERT INTO concepts (deck, name, description)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (deck, name) DO NOTHING
		RETURNING id`,
		deck, name, description,
	).Scan(&conceptID)
	if err == nil {
		return conceptID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("failed to create concept: %w", err)
	}

	err = rw.db.QueryRow(ctx, `SELECT id FROM concepts WHERE deck = $1 AND name = $2`, deck, name).Scan(&conceptID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get concept: %w", err)
	}
	return conceptID, nil
}

// SaveSessionContext はセッションのコンテキストを保存します
func (rw *MemoryRepositoryRW) SaveSessionContext(ctx context.Context, session *models.SessionContext) (*models.SessionContext, error) {
	saved := *session
	err := rw.db.QueryRow(ctx, `
		INSERT INTO session_contexts (deck, source_material, learning_goals, coverage_strategy, observations)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, created_at`,
		session.Deck, session.SourceMaterial, session.LearningGoals, session.CoverageStrategy, session.Observations,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save session context: %w", err)
	}
	return &saved, nil
}

// === Read操作 ===

// GetConceptCoverage はデッキ内の概念ごとのカード数を返します
// カードが紐付いていない定義済みの概念も0件として含まれます
func (r *MemoryRepositoryR) GetConceptCoverage(ctx context.Context, deck string) ([]models.ConceptCoverage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.name, COALESCE(c.description, ''), COUNT(cl.id) AS card_count
		FROM concepts c
		LEFT JOIN concept_links cl ON c.id = cl.concept_id
		WHERE c.deck = $1
		GROUP BY c.id, c.name, c.description
		ORDER BY card_count DESC, c.name`,
		deck,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get concept coverage: %w", err)
	}
	defer rows.Close()

	var coverage []models.ConceptCoverage
	for rows.Next() {
		var c models.ConceptCoverage
		if err := rows.Scan(&c.ConceptName, &c.Description, &c.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan concept coverage: %w", err)
		}
		coverage = append(coverage, c)
	}
	return coverage, rows.Err()
}

// GetSessionContext はデッキの最近のセッションコンテキストを新しい順に返します
func (r *MemoryRepositoryR) GetSessionContext(ctx context.Context, deck string, limit int) ([]models.SessionContext, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, deck,
			COALESCE(source_material, ''), COALESCE(learning_goals, ''),
			COALESCE(coverage_strategy, ''), COALESCE(observations, ''),
			created_at
		FROM session_contexts
		WHERE deck = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		deck, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get session context: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionContext
	for rows.Next() {
		var s models.SessionContext
		if err := rows.Scan(&s.ID, &s.Deck, &s.SourceMaterial, &s.LearningGoals, &s.CoverageStrategy, &s.Observations, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session context: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetCardRationales はノートに紐付く設計根拠を新しい順に返します
func (r *MemoryRepositoryR) GetCardRationales(ctx context.Context, ankiNoteID int64) ([]models.CardRationale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, anki_note_id, card_type_reasoning, COALESCE(wording_notes, ''), alternatives_considered, created_at
		FROM card_rationales
		WHERE anki_note_id = $1
		ORDER BY created_at DESC`,
		ankiNoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get card rationales: %w", err)
	}
	defer rows.Close()

	var rationales []models.CardRationale
	for rows.Next() {
		var rationale models.CardRationale
		var alternativesJSON []byte
		if err := rows.Scan(&rationale.ID, &rationale.AnkiNoteID, &rationale.CardTypeReasoning, &rationale.WordingNotes, &alternativesJSON, &rationale.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card rationale: %w", err)
		}
		if err := unmarshalOrNil(alternativesJSON, &rationale.AlternativesConsidered); err != nil {
			return nil, err
		}
		rationales = append(rationales, rationale)
	}
	return rationales, rows.Err()
}

// GetCardFeedback はノートに紐付くフィードバックを新しい順に返します
func (r *MemoryRepositoryR) GetCardFeedback(ctx context.Context, ankiNoteID int64) ([]models.CardFeedback, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, anki_note_id, feedback_type,
			COALESCE(user_comment, ''), COALESCE(llm_reflection, ''), COALESCE(action_taken, ''),
			created_at
		FROM card_feedback
		WHERE anki_note_id = $1
		ORDER BY created_at DESC`,
		ankiNoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get card feedback: %w", err)
	}
	defer rows.Close()

	var feedbacks []models.CardFeedback
	for rows.Next() {
		var feedback models.CardFeedback
		if err := rows.Scan(&feedback.ID, &feedback.AnkiNoteID, &feedback.FeedbackType, &feedback.UserComment, &feedback.LLMReflection, &feedback.ActionTaken, &feedback.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card feedback: %w", err)
		}
		feedbacks = append(feedbacks, feedback)
	}
	return feedbacks, rows.Err()
}
