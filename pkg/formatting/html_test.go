package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineFormatting(t *testing.T) {
	t.Run("基本の装飾タグで包む", func(t *testing.T) {
		assert.Equal(t, "<b>important</b>", Bold("important"))
		assert.Equal(t, "<i>emphasis</i>", Italic("emphasis"))
		assert.Equal(t, "<u>key term</u>", Underline("key term"))
		assert.Equal(t, "<sub>2</sub>", Subscript("2"))
		assert.Equal(t, "<sup>2</sup>", Superscript("2"))
	})

	t.Run("特殊文字はエスケープされる", func(t *testing.T) {
		assert.Equal(t, "<b>a &lt; b</b>", Bold("a < b"))
		assert.Equal(t, "<code>if x &gt; 0 {}</code>", InlineCode("if x > 0 {}"))
	})

	t.Run("色指定のスタイルを生成する", func(t *testing.T) {
		assert.Equal(t, `<span style="color: red;">warning</span>`, Color("warning", "red"))
		assert.Equal(t, `<span style="background-color: yellow;">key</span>`, Highlight("key", ""))
		assert.Equal(t, `<span style="background-color: pink;">key</span>`, Highlight("key", "pink"))
	})
}

func TestBlockFormatting(t *testing.T) {
	t.Run("リストを生成する", func(t *testing.T) {
		assert.Equal(t, "<ul><li>First</li><li>Second</li></ul>", UnorderedList([]string{"First", "Second"}))
		assert.Equal(t, "<ol><li>First step</li></ol>", OrderedList([]string{"First step"}))
	})

	t.Run("テーブルを生成する", func(t *testing.T) {
		got := Table([][]string{{"A", "1"}, {"B", "2"}}, []string{"Letter", "Number"})
		want := "<table><thead><tr><th>Letter</th><th>Number</th></tr></thead>" +
			"<tbody><tr><td>A</td><td>1</td></tr><tr><td>B</td><td>2</td></tr></tbody></table>"
		assert.Equal(t, want, got)
	})

	t.Run("ヘッダなしのテーブルを生成する", func(t *testing.T) {
		got := Table([][]string{{"A"}}, nil)
		assert.Equal(t, "<table><tbody><tr><td>A</td></tr></tbody></table>", got)
	})

	t.Run("divは属性を選択的に付与しコンテンツをエスケープしない", func(t *testing.T) {
		assert.Equal(t, `<div class="important">content</div>`, Div("content", "important", ""))
		assert.Equal(t, `<div style="text-align: center;">centered</div>`, Div("centered", "", "text-align: center;"))
		assert.Equal(t, "<div><b>bold</b></div>", Div("<b>bold</b>", "", ""))
	})

	t.Run("改行タグを連結する", func(t *testing.T) {
		assert.Equal(t, "<br>", LineBreak(1))
		assert.Equal(t, "<br><br>", LineBreak(2))
	})
}

func TestMathJax(t *testing.T) {
	assert.Equal(t, `\(x^2 + y^2 = z^2\)`, MathJaxInline("x^2 + y^2 = z^2"))
	assert.Equal(t, `\[E = mc^2\]`, MathJaxBlock("E = mc^2"))
}

func TestStripHTML(t *testing.T) {
	t.Run("タグを除去し実体参照をデコードする", func(t *testing.T) {
		assert.Equal(t, "Hello world", StripHTML("<b>Hello</b> <i>world</i>"))
		assert.Equal(t, "a < b", StripHTML("a &lt; b"))
		assert.Equal(t, "plain", StripHTML("plain"))
	})

	t.Run("文字数はタグを除いて数える", func(t *testing.T) {
		assert.Equal(t, 5, TextLength("<b>Hello</b>"))
		assert.Equal(t, 10, TextLength("Plain text"))
		// マルチバイト文字は1文字として数える
		assert.Equal(t, 3, TextLength("<b>日本語</b>"))
	})
}
