// Package analyzer はデッキの品質・学習成績の分析と改善提案の生成を提供します
//
// 各分析は呼び出し時にカードストアからデータを一括取得し、
// 取得済みデータに対して集計を行う自己完結した計算です。
// 品質分析と成績分析は互いに独立しており、並行に実行できます。
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinford/deck-doctor/pkg/models"
)

// CardStore は上流のフラッシュカードストアへの読み取りインターフェースです
// 実装は internal/infra/ankiconnect が提供し、テストではフェイクに差し替えます
type CardStore interface {
	// FindCards はクエリにマッチするカードIDを返す
	FindCards(ctx context.Context, query string) ([]int64, error)
	// CardsInfo はカードIDに対応するカード情報を返す
	CardsInfo(ctx context.Context, cardIDs []int64) ([]models.CardRecord, error)
	// NotesInfo はノートIDに対応するノート情報を返す
	NotesInfo(ctx context.Context, noteIDs []int64) ([]models.NoteRecord, error)
	// DeckNames は全デッキ名を返す
	DeckNames(ctx context.Context) ([]string, error)
}

// DeckNotFoundError は指定されたデッキが存在しない場合のエラーです
// Suggestions には大文字小文字を無視した部分一致の候補が最大5件入ります
type DeckNotFoundError struct {
	Deck        string
	Suggestions []string
}

func (e *DeckNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("deck not found: %q", e.Deck)
	}
	return fmt.Sprintf("deck not found: %q (did you mean: %s)", e.Deck, strings.Join(e.Suggestions, ", "))
}

// maxDeckSuggestions はDeckNotFoundErrorに含める候補の最大数
const maxDeckSuggestions = 5

// CheckDeckExists はデッキの存在を確認します
// 存在しない場合は候補付きの DeckNotFoundError を返します
func CheckDeckExists(ctx context.Context, store CardStore, deckName string) error {
	names, err := store.DeckNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list decks: %w", err)
	}

	for _, name := range names {
		if name == deckName {
			return nil
		}
	}

	var suggestions []string
	lower := strings.ToLower(deckName)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			suggestions = append(suggestions, name)
			if len(suggestions) == maxDeckSuggestions {
				break
			}
		}
	}

	return &DeckNotFoundError{Deck: deckName, Suggestions: suggestions}
}

// deckQuery はデッキ内の全カードを検索するクエリを返します
func deckQuery(deckName string) string {
	return fmt.Sprintf("deck:%q", deckName)
}
