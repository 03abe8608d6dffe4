package formatting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlighter_HighlightCode(t *testing.T) {
	t.Run("中央寄せのテーブル構造で出力する", func(t *testing.T) {
		h := NewHighlighter(DefaultHighlighterConfig())

		got, err := h.HighlightCode(`print("hello")`, "python")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(got, "<center><table "))
		assert.True(t, strings.HasSuffix(got, "</table></center><br>"))
		assert.Contains(t, got, "font-size: 15px;")
		// monokaiはダークテーマなので明るい文字色になる
		assert.Contains(t, got, "color:#ccc;")
	})

	t.Run("中央寄せを無効にできる", func(t *testing.T) {
		config := DefaultHighlighterConfig()
		config.CenterFragments = false
		h := NewHighlighter(config)

		got, err := h.HighlightCode("x = 1", "python")
		require.NoError(t, err)

		assert.False(t, strings.Contains(got, "<center>"))
	})

	t.Run("ライトテーマでは暗い文字色になる", func(t *testing.T) {
		config := DefaultHighlighterConfig()
		config.Style = "github"
		h := NewHighlighter(config)

		got, err := h.HighlightCode("x = 1", "python")
		require.NoError(t, err)

		assert.Contains(t, got, "color:#222;")
	})

	t.Run("未知の言語はプレーンテキストとして処理する", func(t *testing.T) {
		h := NewHighlighter(DefaultHighlighterConfig())

		got, err := h.HighlightCode("some text", "no-such-language")
		require.NoError(t, err)
		assert.Contains(t, got, "some text")
	})

	t.Run("Ankiのテンプレート構文をエスケープする", func(t *testing.T) {
		h := NewHighlighter(DefaultHighlighterConfig())

		got, err := h.HighlightCode("m := map[string]int{{key: 1}}", "text")
		require.NoError(t, err)

		assert.NotContains(t, got, "{{")
		assert.NotContains(t, got, "}}")
		assert.Contains(t, got, "{<!---->{")
	})
}

func TestHighlighter_HighlightCodeBlocks(t *testing.T) {
	h := NewHighlighter(DefaultHighlighterConfig())

	t.Run("言語指定付きのコードブロックを置き換える", func(t *testing.T) {
		input := `before <pre><code class="language-python">x = 1</code></pre> after`

		got, err := h.HighlightCodeBlocks(input)
		require.NoError(t, err)

		assert.NotContains(t, got, `class="language-python"`)
		assert.Contains(t, got, "before ")
		assert.Contains(t, got, " after")
		assert.Contains(t, got, "<center><table ")
	})

	t.Run("コードブロックがなければ入力をそのまま返す", func(t *testing.T) {
		input := "plain <code>inline</code> text"

		got, err := h.HighlightCodeBlocks(input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	})

	t.Run("コード内の実体参照はデコードしてからハイライトする", func(t *testing.T) {
		input := `<pre><code class="language-python">if x &gt; 0: pass</code></pre>`

		got, err := h.HighlightCodeBlocks(input)
		require.NoError(t, err)
		assert.NotContains(t, got, "&amp;gt;")
	})
}
