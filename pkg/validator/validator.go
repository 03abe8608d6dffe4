package validator

import (
	"github.com/jinford/deck-doctor/pkg/models"
)

// CardValidator は全ルールをカードに適用するオーケストレータです
// ルールは固定順で登録され、動的な検出は行いません
type CardValidator struct {
	strictness models.Strictness
	rules      []Rule
}

// New は指定した厳格度の CardValidator を作成します
// 不明な厳格度は moderate として扱います
func New(strictness models.Strictness) *CardValidator {
	switch strictness {
	case models.StrictnessStrict, models.StrictnessModerate, models.StrictnessLenient:
	default:
		strictness = models.StrictnessModerate
	}
	return &CardValidator{
		strictness: strictness,
		rules: []Rule{
			ClozeFormatRule{}, // 致命的な構造エラーを先に検出する
			AnswerLengthRule{},
			MinimumInformationRule{},
			AmbiguityRule{},
			ClozeCountRule{},
			ContextRule{},
		},
	}
}

// Strictness は設定されている厳格度を返します
func (v *CardValidator) Strictness() models.Strictness {
	return v.strictness
}

// Validate は全ルールを実行し結果を連結して返します
// 同一カード・同一厳格度に対して常に同じ順序の結果を返します
func (v *CardValidator) Validate(card models.Card) []models.ValidationResult {
	var results []models.ValidationResult
	for _, rule := range v.rules {
		results = append(results, rule.Check(card, v.strictness)...)
	}
	return results
}

// IsValid はERROR深刻度の結果がないかどうかを返します
func (v *CardValidator) IsValid(card models.Card) bool {
	for _, r := range v.Validate(card) {
		if r.Severity == models.SeverityError {
			return false
		}
	}
	return true
}

// Errors はERROR深刻度の結果のみを返します
func (v *CardValidator) Errors(card models.Card) []models.ValidationResult {
	return filterBySeverity(v.Validate(card), models.SeverityError)
}

// Warnings はWARNING深刻度の結果のみを返します
func (v *CardValidator) Warnings(card models.Card) []models.ValidationResult {
	return filterBySeverity(v.Validate(card), models.SeverityWarning)
}

// Suggestions はSUGGESTION深刻度の結果のみを返します
func (v *CardValidator) Suggestions(card models.Card) []models.ValidationResult {
	return filterBySeverity(v.Validate(card), models.SeveritySuggestion)
}

func filterBySeverity(results []models.ValidationResult, severity models.ValidationSeverity) []models.ValidationResult {
	filtered := make([]models.ValidationResult, 0, len(results))
	for _, r := range results {
		if r.Severity == severity {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
