package ankiconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer は固定レスポンスを返すAnkiConnectのテストサーバを立てます
// 受信したリクエストエンベロープは got に記録されます
func newTestServer(t *testing.T, result any, apiError string, got *request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		resp := map[string]any{"result": result, "error": nil}
		if apiError != "" {
			resp["error"] = apiError
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestClient_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("リクエストエンベロープにアクションとバージョンが入る", func(t *testing.T) {
		var got request
		server := newTestServer(t, []string{"Default"}, "", &got)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		names, err := client.DeckNames(ctx)
		require.NoError(t, err)

		assert.Equal(t, "deckNames", got.Action)
		assert.Equal(t, 6, got.Version)
		assert.Equal(t, []string{"Default"}, names)
	})

	t.Run("APIエラーはAPIErrorとして返る", func(t *testing.T) {
		server := newTestServer(t, nil, "deck was not found: Missing", nil)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		_, err := client.FindCards(ctx, `deck:"Missing"`)
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "findCards", apiErr.Action)
		assert.Equal(t, "deck was not found: Missing", apiErr.Message)
	})

	t.Run("接続できない場合はErrConnectionFailedを返す", func(t *testing.T) {
		// 到達不能なポートに向ける
		client := NewClient("http://127.0.0.1:1", 6, 100*time.Millisecond)
		_, err := client.DeckNames(ctx)
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("200以外のステータスはErrConnectionFailedを返す", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		_, err := client.DeckNames(ctx)
		require.ErrorIs(t, err, ErrConnectionFailed)
	})
}

func TestClient_NoteOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("addNoteは作成されたノートIDを返す", func(t *testing.T) {
		var got request
		server := newTestServer(t, int64(1502298033753), "", &got)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		noteID, err := client.AddNote(ctx, Note{
			DeckName:  "Biology",
			ModelName: "Basic",
			Fields:    map[string]string{"Front": "Q", "Back": "A"},
			Tags:      []string{"bio"},
		})
		require.NoError(t, err)

		assert.Equal(t, "addNote", got.Action)
		assert.Equal(t, int64(1502298033753), noteID)
	})

	t.Run("addNotesは失敗位置にnilを返す", func(t *testing.T) {
		server := newTestServer(t, []any{int64(100), nil}, "", nil)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		noteIDs, err := client.AddNotes(ctx, []Note{{}, {}})
		require.NoError(t, err)

		require.Len(t, noteIDs, 2)
		require.NotNil(t, noteIDs[0])
		assert.Equal(t, int64(100), *noteIDs[0])
		assert.Nil(t, noteIDs[1])
	})

	t.Run("notesInfoはフィールドをorder順に整列する", func(t *testing.T) {
		result := []map[string]any{
			{
				"noteId":    int64(55),
				"modelName": "Basic",
				"tags":      []string{"geo"},
				"fields": map[string]any{
					"Back":  map[string]any{"value": "Paris", "order": 1},
					"Front": map[string]any{"value": "Capital of France?", "order": 0},
				},
			},
		}
		server := newTestServer(t, result, "", nil)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		records, err := client.NotesInfo(ctx, []int64{55})
		require.NoError(t, err)

		require.Len(t, records, 1)
		note := records[0]
		assert.Equal(t, int64(55), note.NoteID)
		assert.Equal(t, "Basic", note.TypeName)
		require.Len(t, note.Fields, 2)
		assert.Equal(t, "Front", note.Fields[0].Name)
		assert.Equal(t, "Capital of France?", note.Fields[0].Value)
		assert.Equal(t, "Back", note.Fields[1].Name)
	})
}

func TestClient_CardOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("cardsInfoはレビュー統計をカードレコードに写す", func(t *testing.T) {
		result := []map[string]any{
			{
				"cardId":    int64(901),
				"note":      int64(55),
				"deckName":  "Biology",
				"modelName": "Basic",
				"factor":    2500,
				"lapses":    1,
				"interval":  30,
				"reps":      12,
			},
		}
		server := newTestServer(t, result, "", nil)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		records, err := client.CardsInfo(ctx, []int64{901})
		require.NoError(t, err)

		require.Len(t, records, 1)
		card := records[0]
		assert.Equal(t, int64(901), card.CardID)
		assert.Equal(t, int64(55), card.NoteID)
		assert.Equal(t, 2500, card.Ease)
		assert.Equal(t, 2.5, card.EaseFactor())
		assert.Equal(t, 12, card.Reps)
	})
}

func TestClient_DeckOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("getDeckStatsはデッキ名の一致する統計を返す", func(t *testing.T) {
		result := map[string]any{
			"1651445861967": map[string]any{
				"deck_id":       int64(1651445861967),
				"name":          "Biology",
				"new_count":     5,
				"learn_count":   2,
				"review_count":  10,
				"total_in_deck": 120,
			},
		}
		server := newTestServer(t, result, "", nil)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		stats, err := client.GetDeckStats(ctx, "Biology")
		require.NoError(t, err)

		assert.Equal(t, "Biology", stats.Name)
		assert.Equal(t, 120, stats.TotalInDeck)
	})

	t.Run("createDeckはデッキIDを返す", func(t *testing.T) {
		var got request
		server := newTestServer(t, int64(1700000000000), "", &got)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		deckID, err := client.CreateDeck(ctx, "Biology::Cells")
		require.NoError(t, err)

		assert.Equal(t, "createDeck", got.Action)
		assert.Equal(t, int64(1700000000000), deckID)
	})
}

func TestClient_TagOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("addTagsはノートIDとタグ文字列を渡す", func(t *testing.T) {
		var got request
		server := newTestServer(t, nil, "", &got)
		defer server.Close()

		client := NewClient(server.URL, 6, time.Second)
		err := client.AddTags(ctx, []int64{1, 2}, "bio chapter1")
		require.NoError(t, err)
		assert.Equal(t, "addTags", got.Action)
	})
}
