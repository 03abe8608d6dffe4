package models

// DeckPatterns はデッキ全体の構造パターンを表します
// 品質分析時にノート集合から一度だけ導出され、以後変更されません
type DeckPatterns struct {
	TagConsistency   float64            `json:"tagConsistency"`   // タグ付きノートの割合（0.0-1.0）
	TypeDistribution map[string]float64 `json:"typeDistribution"` // ノートタイプ別の割合
	HTMLUsagePercent float64            `json:"htmlUsagePercent"` // HTMLを含むノートの割合（%）
	AvgFieldLength   float64            `json:"avgFieldLength"`   // HTML除去後の平均フィールド長
}

// IssueCount はルール識別子と件数の組です
type IssueCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// QualityReport はデッキ品質分析の結果を表します
// サンプリングを使用した場合、スコアは統計的な推定値であり
// 呼び出しごとに変動しうることに注意してください
type QualityReport struct {
	Score              float64                    `json:"score"` // 0-100
	TotalCards         int                        `json:"totalCards"`
	IssuesBySeverity   map[ValidationSeverity]int `json:"issuesBySeverity"`
	TopIssues          []IssueCount               `json:"topIssues"` // 頻度順の上位5件
	DeckPatterns       DeckPatterns               `json:"deckPatterns"`
	ProblematicCardIDs []int64                    `json:"problematicCardIDs"` // エラーまたは警告を持つノートID
}

// StrugglingCard は学習に苦戦しているカードを表します
// ease < 1.5 または lapses > 2 のカードが該当します
type StrugglingCard struct {
	NoteID       int64   `json:"noteID"`
	Ease         float64 `json:"ease"` // 小数第2位まで
	Lapses       int     `json:"lapses"`
	IntervalDays int     `json:"intervalDays"`
}

// PerformanceReport はデッキの学習成績分析の結果を表します
type PerformanceReport struct {
	RetentionRate     float64          `json:"retentionRate"` // 0.0-1.0（推定値）
	EaseDistribution  map[string]int   `json:"easeDistribution"`
	LapseRate         float64          `json:"lapseRate"`
	StrugglingCards   []StrugglingCard `json:"strugglingCards"` // ease昇順、同値はlapses降順
	MaturityBreakdown map[string]int   `json:"maturityBreakdown"`
	TotalReviews      int              `json:"totalReviews"`
}

// RecommendationImpact は改善の効果の大きさを表します
type RecommendationImpact string

const (
	ImpactHigh   RecommendationImpact = "high"
	ImpactMedium RecommendationImpact = "medium"
	ImpactLow    RecommendationImpact = "low"
)

// RecommendationEffort は改善に必要な作業量を表します
type RecommendationEffort string

const (
	EffortQuick    RecommendationEffort = "quick"    // 5分未満
	EffortModerate RecommendationEffort = "moderate" // 30分未満
	EffortLarge    RecommendationEffort = "large"    // 1時間以上
)

// Recommendation はデッキ改善の推奨アクションを表します
// PriorityScore は派生値であり、ソート前に必ず再計算されます
type Recommendation struct {
	Title              string               `json:"title"`
	Impact             RecommendationImpact `json:"impact"`
	Effort             RecommendationEffort `json:"effort"`
	PriorityScore      float64              `json:"priorityScore"`
	Description        string               `json:"description"`
	AffectedCardIDs    []int64              `json:"affectedCardIDs,omitempty"`
	ExampleBeforeAfter string               `json:"exampleBeforeAfter,omitempty"`
}
