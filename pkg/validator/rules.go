package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jinford/deck-doctor/pkg/models"
)

// Rule は1枚のカードに対するバリデーションルールのインターフェースです
// 各ルールはステートレスかつ独立で、他ルールの結果に依存しません
type Rule interface {
	// Check はカードを検査し、0件以上のバリデーション結果を返す
	Check(card models.Card, strictness models.Strictness) []models.ValidationResult
}

// ルール識別子
const (
	RuleAnswerLength       = "answer_length"
	RuleMinimumInformation = "minimum_information"
	RuleAmbiguity          = "ambiguity"
	RuleClozeCount         = "cloze_count"
	RuleClozeFormat        = "cloze_format"
	RuleContext            = "context"
)

// answerWordLimits は厳格度ごとの解答の最大単語数
var answerWordLimits = map[models.Strictness]int{
	models.StrictnessStrict:   30,
	models.StrictnessModerate: 50,
	models.StrictnessLenient:  100,
}

// clozeCountLimits は厳格度ごとの穴埋め削除の最大数
var clozeCountLimits = map[models.Strictness]int{
	models.StrictnessStrict:   2,
	models.StrictnessModerate: 3,
	models.StrictnessLenient:  5,
}

// AnswerLengthRule は解答が長すぎるカードを検出します
// 長い解答は最小情報原則に反します
type AnswerLengthRule struct{}

func (AnswerLengthRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if card.IsCloze() {
		// clozeカードには独立した解答フィールドがない
		return nil
	}

	maxWords, ok := answerWordLimits[strictness]
	if !ok {
		maxWords = answerWordLimits[models.StrictnessModerate]
	}

	wordCount := len(strings.Fields(card.Back))
	if wordCount > maxWords {
		return []models.ValidationResult{{
			Severity: models.SeverityWarning,
			Rule:     RuleAnswerLength,
			Message: fmt.Sprintf(
				"Answer has %d words (max recommended: %d). "+
					"Consider splitting into multiple cards following the minimum information principle.",
				wordCount, maxWords),
			Field: "back",
		}}
	}
	return nil
}

// minimumInfoTriggerGroups は複数概念を示唆する語のグループです
// 字面の共起を見るだけのヒューリスティックであり、
// 文法的に普通の質問文にも誤検出しうる点に注意（意味解析はしない）
var minimumInfoTriggerGroups = [][]string{
	{"list", "enumerate"},
	{"and", ","},
	{"or"},
}

// MinimumInformationRule は1枚に複数の概念を詰め込んだカードを検出します
type MinimumInformationRule struct{}

func (MinimumInformationRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if card.IsCloze() {
		if count := card.ClozeCount(); count > 3 {
			return []models.ValidationResult{{
				Severity: models.SeverityWarning,
				Rule:     RuleMinimumInformation,
				Message: fmt.Sprintf(
					"Card has %d cloze deletions. Consider splitting into separate cards for better retention.",
					count),
				Field: "text",
			}}
		}
		return nil
	}

	front := strings.ToLower(card.Front)
	var found []string
	for _, group := range minimumInfoTriggerGroups {
		hit := false
		for _, trigger := range group {
			if strings.Contains(front, trigger) {
				hit = true
			}
		}
		if hit {
			for _, trigger := range group {
				if strings.Contains(front, trigger) {
					found = append(found, trigger)
				}
			}
		}
	}

	if len(found) >= 2 {
		severity := models.SeveritySuggestion
		if strictness == models.StrictnessStrict {
			severity = models.SeverityWarning
		}
		return []models.ValidationResult{{
			Severity: severity,
			Rule:     RuleMinimumInformation,
			Message: "Front may contain multiple questions or list requests. " +
				"One concept per card improves retention.",
			Field: "front",
		}}
	}
	return nil
}

// vaguePhrases は曖昧な質問を示唆するフレーズのリストです
var vaguePhrases = []string{
	"what about",
	"tell me about",
	"describe",
	"explain everything",
	"what do you know",
}

// AmbiguityRule は曖昧または不完全な質問文を検出します
type AmbiguityRule struct{}

func (AmbiguityRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if card.IsCloze() {
		// clozeカードは本質的に具体的
		return nil
	}

	frontLower := strings.ToLower(card.Front)
	for _, phrase := range vaguePhrases {
		if strings.Contains(frontLower, phrase) {
			return []models.ValidationResult{{
				Severity: models.SeveritySuggestion,
				Rule:     RuleAmbiguity,
				Message: fmt.Sprintf(
					"Question contains '%s' which may be too vague. "+
						"Be more specific (e.g., 'What is the function of...' instead of 'What about...').",
					phrase),
				Field: "front",
			}}
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(card.Front)) < 10 {
		return []models.ValidationResult{{
			Severity: models.SeveritySuggestion,
			Rule:     RuleAmbiguity,
			Message: "Question is very short. " +
				"Ensure it provides enough context for standalone understanding.",
			Field: "front",
		}}
	}
	return nil
}

// ClozeCountRule は穴埋め削除が多すぎるカードを検出します
type ClozeCountRule struct{}

func (ClozeCountRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if !card.IsCloze() {
		return nil
	}

	maxClozes, ok := clozeCountLimits[strictness]
	if !ok {
		maxClozes = clozeCountLimits[models.StrictnessModerate]
	}

	if count := card.ClozeCount(); count > maxClozes {
		return []models.ValidationResult{{
			Severity: models.SeverityWarning,
			Rule:     RuleClozeCount,
			Message: fmt.Sprintf(
				"Card has %d cloze deletions (max recommended: %d). "+
					"Too many deletions make cards difficult and violate minimum information principle.",
				count, maxClozes),
			Field: "text",
		}}
	}
	return nil
}

var (
	// clozeSpanRe は有効な {{cN:: 開始マーカーにマッチします
	clozeSpanRe = regexp.MustCompile(`\{\{c\d+::`)

	// malformedClozeRe は壊れた穴埋め記法を検出します
	// {{ の直後が c でない、cN: の後に :: が続かない、または閉じられていないもの
	malformedClozeRe = regexp.MustCompile(`\{\{[^c]|c\d+:[^:]|\{\{c\d+:[^}]*$`)
)

// ClozeFormatRule は穴埋め記法の妥当性を検査します
// ERRORを返しうる唯一のルールで、カード作成をブロックします
type ClozeFormatRule struct{}

func (ClozeFormatRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if !card.IsCloze() {
		return nil
	}

	if !clozeSpanRe.MatchString(card.Text) {
		return []models.ValidationResult{{
			Severity: models.SeverityError,
			Rule:     RuleClozeFormat,
			Message:  "Cloze card must contain at least one cloze deletion in {{c1::text}} format.",
			Field:    "text",
		}}
	}

	if malformedClozeRe.MatchString(card.Text) {
		return []models.ValidationResult{{
			Severity: models.SeverityError,
			Rule:     RuleClozeFormat,
			Message:  "Malformed cloze deletion. Use format: {{c1::text}} or {{c1::text::hint}}",
			Field:    "text",
		}}
	}
	return nil
}

// ContextRule は単独で理解するのに十分なコンテキストがあるかを検査します
type ContextRule struct{}

func (ContextRule) Check(card models.Card, strictness models.Strictness) []models.ValidationResult {
	if card.IsCloze() {
		body := strings.ReplaceAll(card.Text, "{{", "")
		body = strings.ReplaceAll(body, "}}", "")
		if utf8.RuneCountInString(strings.TrimSpace(body)) < 20 {
			return []models.ValidationResult{{
				Severity: models.SeveritySuggestion,
				Rule:     RuleContext,
				Message:  "Cloze text is very short. Consider adding context for standalone understanding.",
				Field:    "text",
			}}
		}
		return nil
	}

	if len(strings.Fields(card.Front)) <= 2 && !strings.Contains(card.Front, "?") {
		return []models.ValidationResult{{
			Severity: models.SeveritySuggestion,
			Rule:     RuleContext,
			Message: "Question lacks context. Add details for standalone comprehension " +
				"(e.g., 'Capital of France?' instead of 'France').",
			Field: "front",
		}}
	}
	return nil
}
