package models

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CardType はサポートするカードタイプを表します
type CardType string

const (
	CardTypeBasic  CardType = "basic"
	CardTypeCloze  CardType = "cloze"
	CardTypeTypeIn CardType = "type_in"
)

// Card はフラッシュカードを表す値オブジェクトです
// Type を判別子としたタグ付きユニオンとして扱い、
// basic/type_in は Front/Back、cloze は Text/Extra を使用します
type Card struct {
	Type  CardType `json:"type"`
	Front string   `json:"front,omitempty"` // 質問文（basic/type_in）
	Back  string   `json:"back,omitempty"`  // 解答（basic/type_in）
	Text  string   `json:"text,omitempty"`  // 穴埋めテキスト（cloze）
	Extra string   `json:"extra,omitempty"` // 補足コンテキスト（cloze）
	Tags  []string `json:"tags,omitempty"`
	Deck  string   `json:"deck,omitempty"` // 省略時はデフォルトデッキを使用
}

// NewBasicCard は前後の空白を除去した基本カードを作成します
func NewBasicCard(front, back string, tags []string) Card {
	return Card{
		Type:  CardTypeBasic,
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
		Tags:  tags,
	}
}

// NewClozeCard は前後の空白を除去した穴埋めカードを作成します
func NewClozeCard(text, extra string, tags []string) Card {
	return Card{
		Type:  CardTypeCloze,
		Text:  strings.TrimSpace(text),
		Extra: extra,
		Tags:  tags,
	}
}

// NewTypeInCard は前後の空白を除去したタイプ入力カードを作成します
func NewTypeInCard(front, back string, tags []string) Card {
	return Card{
		Type:  CardTypeTypeIn,
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
		Tags:  tags,
	}
}

// IsCloze は穴埋めカードかどうかを返します
func (c Card) IsCloze() bool {
	return c.Type == CardTypeCloze
}

// HasRequiredFields は必須テキストフィールドが埋まっているかを返します
// basic/type_in は Front と Back、cloze は Text が空白のみでないことを要求します
func (c Card) HasRequiredFields() bool {
	if c.IsCloze() {
		return strings.TrimSpace(c.Text) != ""
	}
	return strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != ""
}

// clozeOpenRe は {{cN:: 形式の穴埋め開始マーカーにマッチします
var clozeOpenRe = regexp.MustCompile(`\{\{c(\d+)::`)

// ClozeCount はテキスト中の穴埋め削除の個数を返します
func (c Card) ClozeCount() int {
	return len(clozeOpenRe.FindAllString(c.Text, -1))
}

// UniqueClozeNumbers は穴埋め番号を昇順・重複なしで返します
func (c Card) UniqueClozeNumbers() []int {
	seen := map[int]bool{}
	numbers := []int{}
	for _, m := range clozeOpenRe.FindAllStringSubmatch(c.Text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
