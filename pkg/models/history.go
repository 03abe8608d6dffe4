package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationSourceType はカード生成セッションのソース種別です
type GenerationSourceType string

const (
	GenerationSourcePDF    GenerationSourceType = "pdf"
	GenerationSourceEPub   GenerationSourceType = "epub"
	GenerationSourceWeb    GenerationSourceType = "web"
	GenerationSourceText   GenerationSourceType = "text"
	GenerationSourceManual GenerationSourceType = "manual"
)

// Generation はカード生成セッションの記録です
type Generation struct {
	ID          uuid.UUID            `json:"id"`
	SourceType  GenerationSourceType `json:"sourceType"`
	SourcePath  string               `json:"sourcePath,omitempty"` // ファイルパスまたはURL
	Metadata    map[string]any       `json:"metadata,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
	CardCount   int                  `json:"cardCount"` // 取得時に集計される
}

// GeneratedCard は生成セッションとAnkiノートの紐付けです
type GeneratedCard struct {
	ID                 uuid.UUID          `json:"id"`
	GenerationID       uuid.UUID          `json:"generationID"`
	AnkiNoteID         int64              `json:"ankiNoteID"`
	CardType           CardType           `json:"cardType"`
	FrontOrText        string             `json:"frontOrText"`
	Back               string             `json:"back,omitempty"` // clozeカードでは空
	Deck               string             `json:"deck"`
	Tags               []string           `json:"tags,omitempty"`
	ValidationWarnings []ValidationResult `json:"validationWarnings,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// AnalysisType はデッキ分析の種別です
type AnalysisType string

const (
	AnalysisTypeQuality         AnalysisType = "quality"
	AnalysisTypePerformance     AnalysisType = "performance"
	AnalysisTypeRecommendations AnalysisType = "recommendations"
)

// DeckAnalysis はデッキ分析実行の記録です
// OverallScore は品質分析では0-100、成績分析では0.0-1.0です
type DeckAnalysis struct {
	ID           uuid.UUID      `json:"id"`
	DeckName     string         `json:"deckName"`
	AnalysisType AnalysisType   `json:"analysisType"`
	OverallScore *float64       `json:"overallScore,omitempty"`
	TotalCards   int            `json:"totalCards"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	AnalyzedAt   time.Time      `json:"analyzedAt"`
}

// CardRationale はカード設計判断の根拠の記録です
type CardRationale struct {
	ID                     uuid.UUID `json:"id"`
	AnkiNoteID             int64     `json:"ankiNoteID"`
	CardTypeReasoning      string    `json:"cardTypeReasoning"`
	WordingNotes           string    `json:"wordingNotes,omitempty"`
	AlternativesConsidered []string  `json:"alternativesConsidered,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

// CardFeedback はカードに対するユーザーフィードバックの記録です
type CardFeedback struct {
	ID            uuid.UUID `json:"id"`
	AnkiNoteID    int64     `json:"ankiNoteID"`
	FeedbackType  string    `json:"feedbackType"` // confusing/too_hard/too_easy 等
	UserComment   string    `json:"userComment,omitempty"`
	LLMReflection string    `json:"llmReflection,omitempty"`
	ActionTaken   string    `json:"actionTaken,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ConceptLink はカードと学習概念の紐付けです
// Relationship には defines/examples/contrasts/applies/extends 等を入れます
type ConceptLink struct {
	ID           uuid.UUID `json:"id"`
	AnkiNoteID   int64     `json:"ankiNoteID"`
	ConceptName  string    `json:"conceptName"`
	Deck         string    `json:"deck"`
	Relationship string    `json:"relationship,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ConceptCoverage はデッキ内の概念ごとのカード数です
type ConceptCoverage struct {
	ConceptName string `json:"conceptName"`
	Description string `json:"description,omitempty"`
	CardCount   int    `json:"cardCount"`
}

// SessionContext は学習セッション間で引き継ぐ自由記述のコンテキストです
type SessionContext struct {
	ID               uuid.UUID `json:"id"`
	Deck             string    `json:"deck"`
	SourceMaterial   string    `json:"sourceMaterial,omitempty"`
	LearningGoals    string    `json:"learningGoals,omitempty"`
	CoverageStrategy string    `json:"coverageStrategy,omitempty"`
	Observations     string    `json:"observations,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ValidationStats は生成済みカードのバリデーション統計です
type ValidationStats struct {
	TotalCards       int     `json:"totalCards"`
	CardsWithWarning int     `json:"cardsWithWarning"`
	WarningRate      float64 `json:"warningRate"` // パーセント、小数第2位まで
}
