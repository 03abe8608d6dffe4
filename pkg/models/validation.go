package models

// ValidationSeverity はバリデーション結果の深刻度を表します
type ValidationSeverity string

const (
	// SeverityError はカード作成をブロックする致命的な問題
	SeverityError ValidationSeverity = "error"
	// SeverityWarning は作成は許可するが修正を推奨する問題
	SeverityWarning ValidationSeverity = "warning"
	// SeveritySuggestion はベストプラクティスの提案
	SeveritySuggestion ValidationSeverity = "suggestion"
)

// Strictness はバリデーションの厳格度レベルを表します
// ルール内の数値閾値のみを調整し、実行されるルールの集合は変えません
type Strictness string

const (
	StrictnessStrict   Strictness = "strict"
	StrictnessModerate Strictness = "moderate"
	StrictnessLenient  Strictness = "lenient"
)

// ValidationResult は単一ルールのバリデーション結果を表します
type ValidationResult struct {
	Severity ValidationSeverity `json:"severity"`
	Rule     string             `json:"rule"`            // ルール識別子
	Message  string             `json:"message"`         // 人間向けメッセージ
	Field    string             `json:"field,omitempty"` // 問題のあったフィールド
}
