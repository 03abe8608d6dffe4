// Package ankiconnect は AnkiConnect アドオンの HTTP API クライアントを提供します
package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/jinford/deck-doctor/pkg/analyzer"
	"github.com/jinford/deck-doctor/pkg/models"
)

// Client が分析側のカードストアとして使えることを保証する
var _ analyzer.CardStore = (*Client)(nil)

const (
	// DefaultURL は AnkiConnect のデフォルトエンドポイント
	DefaultURL = "http://localhost:8765"

	// DefaultVersion は AnkiConnect API のデフォルトバージョン
	DefaultVersion = 6

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 30 * time.Second
)

// ErrConnectionFailed は AnkiConnect に接続できない場合のエラー
var ErrConnectionFailed = errors.New("failed to connect to AnkiConnect: is Anki running with the AnkiConnect add-on installed?")

// APIError は AnkiConnect がエラーを返した場合のエラー
// Message には上流が返したメッセージがそのまま入ります
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ankiconnect %s failed: %s", e.Action, e.Message)
}

// Client は AnkiConnect API の HTTP クライアント実装
type Client struct {
	url        string
	version    int
	httpClient *http.Client
}

// NewClient は新しい Client を作成する
// url が空の場合はデフォルトのエンドポイントを使用する
func NewClient(url string, version int, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if version <= 0 {
		version = DefaultVersion
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// request は AnkiConnect のリクエストエンベロープ
type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
}

// response は AnkiConnect のレスポンスエンベロープ
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke は AnkiConnect のアクションを呼び出し、結果を out にデコードする
// out が nil の場合は結果を捨てる
func (c *Client) invoke(ctx context.Context, action string, params any, out any) error {
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(request{Action: action, Version: c.version, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrConnectionFailed, resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Error != nil && *envelope.Error != "" {
		return &APIError{Action: action, Message: *envelope.Error}
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// Note は addNote / addNotes に渡すノートのペイロード
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   *NoteOptions      `json:"options,omitempty"`
}

// NoteOptions はノート作成時のオプション
type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// AddNote はノートを1件追加し、作成されたノートIDを返す
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	var noteID int64
	if err := c.invoke(ctx, "addNote", map[string]any{"note": note}, &noteID); err != nil {
		return 0, err
	}
	return noteID, nil
}

// AddNotes はノートを複数追加する
// 作成に失敗したノートの位置には nil が入る
func (c *Client) AddNotes(ctx context.Context, notes []Note) ([]*int64, error) {
	var noteIDs []*int64
	if err := c.invoke(ctx, "addNotes", map[string]any{"notes": notes}, &noteIDs); err != nil {
		return nil, err
	}
	return noteIDs, nil
}

// UpdateNoteFields は既存ノートのフィールドを更新する
func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string) error {
	params := map[string]any{
		"note": map[string]any{"id": noteID, "fields": fields},
	}
	return c.invoke(ctx, "updateNoteFields", params, nil)
}

// DeleteNotes はノートを削除する
func (c *Client) DeleteNotes(ctx context.Context, noteIDs []int64) error {
	return c.invoke(ctx, "deleteNotes", map[string]any{"notes": noteIDs}, nil)
}

// FindNotes は検索クエリにマッチするノートIDを返す
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var noteIDs []int64
	if err := c.invoke(ctx, "findNotes", map[string]any{"query": query}, &noteIDs); err != nil {
		return nil, err
	}
	return noteIDs, nil
}

// noteInfoPayload は notesInfo のレスポンス1件分
type noteInfoPayload struct {
	NoteID    int64    `json:"noteId"`
	ModelName string   `json:"modelName"`
	Tags      []string `json:"tags"`
	Fields    map[string]struct {
		Value string `json:"value"`
		Order int    `json:"order"`
	} `json:"fields"`
}

// NotesInfo はノートIDに対応するノート情報を返す
// フィールドは order 順に整列して返す
func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) ([]models.NoteRecord, error) {
	var payloads []noteInfoPayload
	if err := c.invoke(ctx, "notesInfo", map[string]any{"notes": noteIDs}, &payloads); err != nil {
		return nil, err
	}

	records := make([]models.NoteRecord, 0, len(payloads))
	for _, p := range payloads {
		fields := make([]models.NoteField, 0, len(p.Fields))
		for name, f := range p.Fields {
			fields = append(fields, models.NoteField{Name: name, Value: f.Value, Order: f.Order})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

		records = append(records, models.NoteRecord{
			NoteID:   p.NoteID,
			TypeName: p.ModelName,
			Fields:   fields,
			Tags:     p.Tags,
		})
	}
	return records, nil
}

// DeckNames は全デッキ名を返す
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DeckNamesAndIDs はデッキ名とデッキIDの対応を返す
func (c *Client) DeckNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	var result map[string]int64
	if err := c.invoke(ctx, "deckNamesAndIds", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateDeck はデッキを作成し、デッキIDを返す
// 「親::子」の形式で階層デッキを作成できる
func (c *Client) CreateDeck(ctx context.Context, name string) (int64, error) {
	var deckID int64
	if err := c.invoke(ctx, "createDeck", map[string]any{"deck": name}, &deckID); err != nil {
		return 0, err
	}
	return deckID, nil
}

// DeleteDecks はデッキを削除する
// cardsToo を true にするとデッキ内のカードも削除される
func (c *Client) DeleteDecks(ctx context.Context, deckNames []string, cardsToo bool) error {
	params := map[string]any{"decks": deckNames, "cardsToo": cardsToo}
	return c.invoke(ctx, "deleteDecks", params, nil)
}

// DeckStats はデッキの学習状況の統計
type DeckStats struct {
	DeckID      int64  `json:"deck_id"`
	Name        string `json:"name"`
	NewCount    int    `json:"new_count"`
	LearnCount  int    `json:"learn_count"`
	ReviewCount int    `json:"review_count"`
	TotalInDeck int    `json:"total_in_deck"`
}

// GetDeckStats はデッキの統計情報を返す
func (c *Client) GetDeckStats(ctx context.Context, deckName string) (*DeckStats, error) {
	var result map[string]DeckStats
	if err := c.invoke(ctx, "getDeckStats", map[string]any{"decks": []string{deckName}}, &result); err != nil {
		return nil, err
	}
	for _, stats := range result {
		if stats.Name == deckName {
			return &stats, nil
		}
	}
	return nil, fmt.Errorf("no stats returned for deck %q", deckName)
}

// ModelNames は全ノートタイプ名を返す
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelFieldNames はノートタイプのフィールド名一覧を返す
func (c *Client) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelFieldNames", map[string]any{"modelName": modelName}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FindCards は検索クエリにマッチするカードIDを返す
func (c *Client) FindCards(ctx context.Context, query string) ([]int64, error) {
	var cardIDs []int64
	if err := c.invoke(ctx, "findCards", map[string]any{"query": query}, &cardIDs); err != nil {
		return nil, err
	}
	return cardIDs, nil
}

// cardInfoPayload は cardsInfo のレスポンス1件分
type cardInfoPayload struct {
	CardID    int64  `json:"cardId"`
	Note      int64  `json:"note"`
	DeckName  string `json:"deckName"`
	ModelName string `json:"modelName"`
	Factor    int    `json:"factor"`
	Lapses    int    `json:"lapses"`
	Interval  int    `json:"interval"`
	Reps      int    `json:"reps"`
}

// CardsInfo はカードIDに対応するカード情報を返す
func (c *Client) CardsInfo(ctx context.Context, cardIDs []int64) ([]models.CardRecord, error) {
	var payloads []cardInfoPayload
	if err := c.invoke(ctx, "cardsInfo", map[string]any{"cards": cardIDs}, &payloads); err != nil {
		return nil, err
	}

	records := make([]models.CardRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, models.CardRecord{
			CardID:   p.CardID,
			NoteID:   p.Note,
			DeckName: p.DeckName,
			Type:     p.ModelName,
			Ease:     p.Factor,
			Lapses:   p.Lapses,
			Interval: p.Interval,
			Reps:     p.Reps,
		})
	}
	return records, nil
}

// AddTags はノートにタグを追加する
// tags はスペース区切りで複数指定できる
func (c *Client) AddTags(ctx context.Context, noteIDs []int64, tags string) error {
	return c.invoke(ctx, "addTags", map[string]any{"notes": noteIDs, "tags": tags}, nil)
}

// RemoveTags はノートからタグを削除する
func (c *Client) RemoveTags(ctx context.Context, noteIDs []int64, tags string) error {
	return c.invoke(ctx, "removeTags", map[string]any{"notes": noteIDs, "tags": tags}, nil)
}

// ReplaceTags はノートのタグを置き換える
func (c *Client) ReplaceTags(ctx context.Context, noteIDs []int64, tagToReplace, replaceWith string) error {
	params := map[string]any{
		"notes":            noteIDs,
		"tag_to_replace":   tagToReplace,
		"replace_with_tag": replaceWith,
	}
	return c.invoke(ctx, "replaceTags", params, nil)
}

// GetNoteTags はノートのタグ一覧を返す
func (c *Client) GetNoteTags(ctx context.Context, noteID int64) ([]string, error) {
	records, err := c.NotesInfo(ctx, []int64{noteID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].Tags, nil
}
