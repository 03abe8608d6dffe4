package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jinford/deck-doctor/pkg/analyzer"
	"github.com/jinford/deck-doctor/pkg/formatting"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// DeckListAction は全デッキ名を一覧表示するコマンドのアクション
func DeckListAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	names, err := appCtx.Anki.DeckNames(ctx)
	if err != nil {
		return explainAnkiError(err)
	}

	if len(names) == 0 {
		fmt.Println("デッキがありません")
		return nil
	}

	sort.Strings(names)

	fmt.Printf("デッキ一覧 (%d件):\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}

	return nil
}

// DeckCreateAction はデッキを作成するコマンドのアクション
// 既存デッキと同名の場合は作成せずその旨を表示する
func DeckCreateAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	existing, err := appCtx.Anki.DeckNames(ctx)
	if err != nil {
		return explainAnkiError(err)
	}
	for _, n := range existing {
		if n == name {
			fmt.Printf("デッキ %q はすでに存在します\n", name)
			return nil
		}
	}

	deckID, err := appCtx.Anki.CreateDeck(ctx, name)
	if err != nil {
		return explainAnkiError(err)
	}

	fmt.Printf("デッキ %q を作成しました (ID: %d)\n", name, deckID)
	return nil
}

// previewSampleLimit はプレビュー対象のサンプル数の上限
const previewSampleLimit = 25

// previewHTMLMarkers はプレビュー時のHTML検出に使うマーカー
var previewHTMLMarkers = []string{"<b>", "<i>", "<br>", "<sub>", "<sup>", "<ul>", "<ol>"}

// DeckPreviewAction はデッキの既存カードの傾向を表示するコマンドのアクション
// 新しいカードを作る前に、既存カードの形式やタグ付けの傾向を把握するのに使う
func DeckPreviewAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	sampleSize := cmd.Int("sample-size")

	if sampleSize > previewSampleLimit {
		return fmt.Errorf("sample-sizeは%d以下で指定してください", previewSampleLimit)
	}
	if sampleSize <= 0 {
		sampleSize = 10
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := analyzer.CheckDeckExists(ctx, appCtx.Anki, deckName); err != nil {
		return explainAnkiError(err)
	}

	cardIDs, err := appCtx.Anki.FindCards(ctx, fmt.Sprintf("deck:%q", deckName))
	if err != nil {
		return explainAnkiError(err)
	}
	if len(cardIDs) == 0 {
		fmt.Printf("デッキ %q は空です\n", deckName)
		return nil
	}

	totalCards := len(cardIDs)
	if len(cardIDs) > sampleSize {
		cardIDs = cardIDs[:sampleSize]
	}

	cards, err := appCtx.Anki.CardsInfo(ctx, cardIDs)
	if err != nil {
		return explainAnkiError(err)
	}

	noteIDs := make([]int64, 0, len(cards))
	seen := map[int64]bool{}
	for _, c := range cards {
		if !seen[c.NoteID] {
			seen[c.NoteID] = true
			noteIDs = append(noteIDs, c.NoteID)
		}
	}

	notes, err := appCtx.Anki.NotesInfo(ctx, noteIDs)
	if err != nil {
		return explainAnkiError(err)
	}

	typeCounts := map[string]int{}
	tagCounts := map[string]int{}
	htmlNotes := 0
	var fieldLengths []int

	for _, note := range notes {
		typeName := note.TypeName
		if typeName == "" {
			typeName = "Unknown"
		}
		typeCounts[typeName]++

		for _, tag := range note.Tags {
			tagCounts[tag]++
		}

		for _, f := range note.Fields {
			if containsAnyMarker(f.Value) {
				htmlNotes++
				break
			}
			fieldLengths = append(fieldLengths, formatting.TextLength(f.Value))
		}
	}

	fmt.Printf("デッキ分析: %q\n", deckName)
	fmt.Printf("総カード数: %d\n\n", totalCards)

	fmt.Println("カードタイプの分布:")
	for _, name := range sortedCountKeys(typeCounts) {
		pct := float64(typeCounts[name]) / float64(len(notes)) * 100
		fmt.Printf("- %s: %d (%.0f%%)\n", name, typeCounts[name], pct)
	}
	fmt.Println()

	if len(tagCounts) > 0 {
		topTags := sortedCountKeys(tagCounts)
		if len(topTags) > 5 {
			topTags = topTags[:5]
		}
		fmt.Printf("よく使われるタグ (上位%d件):\n", len(topTags))
		for i, tag := range topTags {
			fmt.Printf("%d. %s (%d枚)\n", i+1, tag, tagCounts[tag])
		}
		fmt.Println()
	}

	fmt.Println("フォーマットの傾向:")
	if htmlNotes > 0 {
		fmt.Printf("- %.0f%%のカードがHTML整形を使用\n", float64(htmlNotes)/float64(len(notes))*100)
	} else {
		fmt.Println("- サンプル中にHTML整形は見つかりませんでした")
	}
	if len(fieldLengths) > 0 {
		sum := 0
		for _, l := range fieldLengths {
			sum += l
		}
		fmt.Printf("- 平均フィールド長: %.0f文字\n", float64(sum)/float64(len(fieldLengths)))
	}

	fmt.Printf("\nサンプルカード (%d件):\n\n", len(notes))
	for i, note := range notes {
		fmt.Printf("Card %d - Note ID: %d\n", i+1, note.NoteID)
		fmt.Printf("Type: %s\n", note.TypeName)
		fmt.Printf("Preview: %s\n\n", cardPreview(note))
	}

	return nil
}

// containsAnyMarker はフィールド値がHTMLマーカーを含むかを返す
func containsAnyMarker(value string) bool {
	for _, m := range previewHTMLMarkers {
		if strings.Contains(value, m) {
			return true
		}
	}
	return false
}

// sortedCountKeys はカウントの降順、同数は名前の昇順でキーを返す
func sortedCountKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// DeckStatsAction はデッキの学習状況の統計を表示するコマンドのアクション
func DeckStatsAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := analyzer.CheckDeckExists(ctx, appCtx.Anki, deckName); err != nil {
		return explainAnkiError(err)
	}

	stats, err := appCtx.Anki.GetDeckStats(ctx, deckName)
	if err != nil {
		return explainAnkiError(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Deck", "Total", "New", "Learning", "Review")
	table.Append(
		stats.Name,
		fmt.Sprintf("%d", stats.TotalInDeck),
		fmt.Sprintf("%d", stats.NewCount),
		fmt.Sprintf("%d", stats.LearnCount),
		fmt.Sprintf("%d", stats.ReviewCount),
	)
	table.Render()

	return nil
}
