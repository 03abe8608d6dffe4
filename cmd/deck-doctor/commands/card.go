package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinford/deck-doctor/internal/infra/ankiconnect"
	"github.com/jinford/deck-doctor/internal/platform/database"
	"github.com/jinford/deck-doctor/pkg/models"
	"github.com/urfave/cli/v3"
)

// searchResultLimit は検索結果の上限
const searchResultLimit = 100

// CardCreateBasicAction は基本カードを作成するコマンドのアクション
func CardCreateBasicAction(ctx context.Context, cmd *cli.Command) error {
	card := models.NewBasicCard(cmd.String("front"), cmd.String("back"), splitTags(cmd.String("tags")))
	return createCard(ctx, cmd, card)
}

// CardCreateClozeAction は穴埋めカードを作成するコマンドのアクション
func CardCreateClozeAction(ctx context.Context, cmd *cli.Command) error {
	card := models.NewClozeCard(cmd.String("text"), cmd.String("extra"), splitTags(cmd.String("tags")))
	return createCard(ctx, cmd, card)
}

// CardCreateTypeInAction はタイプ入力カードを作成するコマンドのアクション
func CardCreateTypeInAction(ctx context.Context, cmd *cli.Command) error {
	card := models.NewTypeInCard(cmd.String("front"), cmd.String("back"), splitTags(cmd.String("tags")))
	return createCard(ctx, cmd, card)
}

// createCard はカードをバリデーションしてからAnkiに登録する共通処理
// エラー判定のある結果が1件でもあれば作成を拒否する
func createCard(ctx context.Context, cmd *cli.Command, card models.Card) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	card.Deck = cmd.String("deck")
	if card.Deck == "" {
		card.Deck = appCtx.Config.Defaults.Deck
	}

	if err := checkRequiredFields(card); err != nil {
		return err
	}

	var warnings, suggestions []models.ValidationResult
	if !cmd.Bool("no-validate") {
		if errs := appCtx.Validator.Errors(card); len(errs) > 0 {
			var b strings.Builder
			b.WriteString("カードのバリデーションに失敗しました:\n")
			for _, e := range errs {
				fmt.Fprintf(&b, "- %s\n", e.Message)
			}
			b.WriteString("\n問題を修正してから再度実行してください")
			return fmt.Errorf("%s", b.String())
		}
		warnings = appCtx.Validator.Warnings(card)
		suggestions = appCtx.Validator.Suggestions(card)
	}

	if err := highlightCardFields(appCtx, &card); err != nil {
		return fmt.Errorf("コードブロックのハイライトに失敗: %w", err)
	}

	noteID, err := appCtx.Anki.AddNote(ctx, noteForCard(card))
	if err != nil {
		return explainAnkiError(err)
	}

	fmt.Printf("カードを作成しました (ノートID: %d)\n", noteID)
	fmt.Printf("デッキ: %s\n", card.Deck)

	if len(warnings) > 0 {
		fmt.Println("\n警告:")
		for _, w := range warnings {
			fmt.Printf("- %s\n", w.Message)
		}
	}
	if len(suggestions) > 0 {
		fmt.Println("\n提案:")
		for _, s := range suggestions {
			fmt.Printf("- %s\n", s.Message)
		}
	}

	recordGeneratedCard(ctx, appCtx, noteID, card, warnings)
	return nil
}

// checkRequiredFields は必須フィールドが空のカードの作成を拒否する
// バリデーションのスキップ指定（--no-validate）でも緩和されない
func checkRequiredFields(card models.Card) error {
	if card.HasRequiredFields() {
		return nil
	}
	if card.IsCloze() {
		return fmt.Errorf("穴埋めテキストが空です。--text に {{c1::答え}} 形式のテキストを指定してください")
	}
	return fmt.Errorf("表面・裏面は空にできません。--front と --back の両方にテキストを指定してください")
}

// highlightCardFields はフィールド中のコードブロックをシンタックスハイライトに変換する
func highlightCardFields(appCtx *AppContext, card *models.Card) error {
	for _, field := range []*string{&card.Front, &card.Back, &card.Text, &card.Extra} {
		if *field == "" {
			continue
		}
		highlighted, err := appCtx.Highlighter.HighlightCodeBlocks(*field)
		if err != nil {
			return err
		}
		*field = highlighted
	}
	return nil
}

// noteForCard はカードタイプに応じたAnkiノートを組み立てる
func noteForCard(card models.Card) ankiconnect.Note {
	note := ankiconnect.Note{
		DeckName: card.Deck,
		Tags:     card.Tags,
	}

	switch card.Type {
	case models.CardTypeCloze:
		note.ModelName = "Cloze"
		note.Fields = map[string]string{"Text": card.Text}
		if card.Extra != "" {
			note.Fields["Extra"] = card.Extra
		}
	case models.CardTypeTypeIn:
		note.ModelName = "Basic (type in the answer)"
		note.Fields = map[string]string{"Front": card.Front, "Back": card.Back}
	default:
		note.ModelName = "Basic"
		note.Fields = map[string]string{"Front": card.Front, "Back": card.Back}
	}

	return note
}

// recordGeneratedCard は作成したカードを履歴データベースに記録する
// 生成セッションとカードは同一トランザクションで保存する
// 記録の失敗はカード作成自体の失敗にしない
func recordGeneratedCard(ctx context.Context, appCtx *AppContext, noteID int64, card models.Card, warnings []models.ValidationResult) {
	db, err := appCtx.Database(ctx)
	if err != nil {
		slog.Warn("履歴データベースに接続できないため記録をスキップ", "noteID", noteID, "error", err)
		return
	}

	frontOrText := card.Front
	if card.IsCloze() {
		frontOrText = card.Text
	}

	provider := database.NewTransactionProvider(db.Pool)
	_, err = database.Transact(ctx, provider, func(a *database.Adapter) (*models.GeneratedCard, error) {
		gen, err := a.History.CreateGeneration(ctx, models.GenerationSourceManual, "", nil)
		if err != nil {
			return nil, err
		}
		return a.History.AddGeneratedCard(ctx, &models.GeneratedCard{
			GenerationID:       gen.ID,
			AnkiNoteID:         noteID,
			CardType:           card.Type,
			FrontOrText:        frontOrText,
			Back:               card.Back,
			Deck:               card.Deck,
			Tags:               card.Tags,
			ValidationWarnings: warnings,
		})
	})
	if err != nil {
		slog.Warn("生成カードの記録に失敗", "noteID", noteID, "error", err)
	}
}

// CardInspectAction はノートの全フィールドとメタデータを表示するコマンドのアクション
func CardInspectAction(ctx context.Context, cmd *cli.Command) error {
	noteID := int64(cmd.Int("note-id"))

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	notes, err := appCtx.Anki.NotesInfo(ctx, []int64{noteID})
	if err != nil {
		return explainAnkiError(err)
	}
	if len(notes) == 0 || notes[0].NoteID == 0 {
		return fmt.Errorf("ノートID %d が見つかりません。deck-doctor card search でノートIDを確認してください", noteID)
	}
	note := notes[0]

	fmt.Printf("Note ID: %d\n", noteID)
	fmt.Printf("Type: %s\n", note.TypeName)

	// デッキ名はノートに紐付く最初のカードから取得する
	cardIDs, err := appCtx.Anki.FindCards(ctx, fmt.Sprintf("nid:%d", noteID))
	if err != nil {
		return explainAnkiError(err)
	}
	if len(cardIDs) > 0 {
		cards, err := appCtx.Anki.CardsInfo(ctx, cardIDs)
		if err != nil {
			return explainAnkiError(err)
		}
		if len(cards) > 0 {
			fmt.Printf("Deck: %s\n", cards[0].DeckName)
		}
	}

	fmt.Printf("Tags: %s\n\n", joinOrNone(note.Tags))

	fmt.Println("Fields:")
	for _, f := range note.Fields {
		fmt.Printf("  %s: %s\n", f.Name, f.Value)
	}

	if len(cardIDs) > 0 {
		fmt.Printf("\nCards Generated: %d\n", len(cardIDs))
	}

	return nil
}

// CardSearchAction はデッキ内のカードを検索して一覧表示するコマンドのアクション
func CardSearchAction(ctx context.Context, cmd *cli.Command) error {
	deckName := cmd.String("deck")
	searchQuery := cmd.String("query")
	tags := splitTags(cmd.String("tags"))
	limit := cmd.Int("limit")

	if limit > searchResultLimit {
		return fmt.Errorf("limitは%d以下で指定してください", searchResultLimit)
	}
	if limit <= 0 {
		limit = 20
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	query := fmt.Sprintf("deck:%q", deckName)
	for _, tag := range tags {
		query += fmt.Sprintf(" tag:%q", tag)
	}
	if searchQuery != "" {
		query += " " + searchQuery
	}

	cardIDs, err := appCtx.Anki.FindCards(ctx, query)
	if err != nil {
		return explainAnkiError(err)
	}

	if len(cardIDs) == 0 {
		msg := fmt.Sprintf("デッキ %q にカードが見つかりません", deckName)
		if searchQuery != "" || len(tags) > 0 {
			msg += "（フィルタ条件を緩めて再検索してください）"
		}
		fmt.Println(msg)
		return nil
	}

	totalFound := len(cardIDs)
	if len(cardIDs) > limit {
		cardIDs = cardIDs[:limit]
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
	noteMap := make(map[int64]models.NoteRecord, len(notes))
	for _, n := range notes {
		noteMap[n.NoteID] = n
	}

	fmt.Printf("デッキ %q で %d 件ヒット（%d 件を表示）\n\n", deckName, totalFound, len(cards))

	for i, c := range cards {
		note := noteMap[c.NoteID]
		fmt.Printf("Card %d - Note ID: %d\n", i+1, c.NoteID)
		fmt.Printf("Type: %s\n", note.TypeName)
		fmt.Printf("Tags: %s\n", joinOrNone(note.Tags))
		fmt.Printf("Preview: %s\n\n", cardPreview(note))
	}

	return nil
}

// cardPreview はノートタイプに応じた1行プレビューを返す
func cardPreview(note models.NoteRecord) string {
	switch note.TypeName {
	case "Basic", "Basic (type in the answer)":
		front := truncateString(note.FieldValue("Front"), 80)
		back := truncateString(note.FieldValue("Back"), 80)
		return fmt.Sprintf("%q -> %q", front, back)
	case "Cloze":
		return fmt.Sprintf("%q", truncateString(note.FieldValue("Text"), 100))
	default:
		if len(note.Fields) > 0 {
			return fmt.Sprintf("%q", truncateString(note.Fields[0].Value, 100))
		}
		return "(no fields)"
	}
}

// joinOrNone はタグ一覧を表示用に整形する
func joinOrNone(tags []string) string {
	if len(tags) == 0 {
		return "(no tags)"
	}
	return strings.Join(tags, ", ")
}
