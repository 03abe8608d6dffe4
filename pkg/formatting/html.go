// Package formatting はAnkiカードフィールド向けのHTML整形ユーティリティを提供します
//
// AnkiのカードフィールドはHTMLをそのまま解釈するため、よく使う装飾パターンを
// エスケープ済みのHTML片として組み立てるヘルパーを揃えています。
package formatting

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Bold はテキストを太字にします
func Bold(text string) string {
	return fmt.Sprintf("<b>%s</b>", html.EscapeString(text))
}

// Italic はテキストを斜体にします
func Italic(text string) string {
	return fmt.Sprintf("<i>%s</i>", html.EscapeString(text))
}

// Underline はテキストに下線を引きます
func Underline(text string) string {
	return fmt.Sprintf("<u>%s</u>", html.EscapeString(text))
}

// Color はテキストに文字色を適用します
// colorValue にはCSSの色指定（色名、16進、rgb()など）を渡します
func Color(text, colorValue string) string {
	return fmt.Sprintf(`<span style="color: %s;">%s</span>`, html.EscapeString(colorValue), html.EscapeString(text))
}

// Highlight はテキストに背景色を付けます
// bgColor が空の場合は黄色を使用します
func Highlight(text, bgColor string) string {
	if bgColor == "" {
		bgColor = "yellow"
	}
	return fmt.Sprintf(`<span style="background-color: %s;">%s</span>`, html.EscapeString(bgColor), html.EscapeString(text))
}

// InlineCode はテキストをインラインコードとして整形します
func InlineCode(text string) string {
	return fmt.Sprintf("<code>%s</code>", html.EscapeString(text))
}

// CodeBlock はテキストをコードブロックとして整形します
func CodeBlock(text string) string {
	return fmt.Sprintf("<pre><code>%s</code></pre>", html.EscapeString(text))
}

// UnorderedList は箇条書きリストを作ります
func UnorderedList(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(item))
	}
	b.WriteString("</ul>")
	return b.String()
}

// OrderedList は番号付きリストを作ります
func OrderedList(items []string) string {
	var b strings.Builder
	b.WriteString("<ol>")
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(item))
	}
	b.WriteString("</ol>")
	return b.String()
}

// Table はHTMLテーブルを作ります
// headers が空でなければヘッダ行を先頭に付けます
func Table(rows [][]string, headers []string) string {
	var b strings.Builder
	b.WriteString("<table>")

	if len(headers) > 0 {
		b.WriteString("<thead><tr>")
		for _, h := range headers {
			fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
		}
		b.WriteString("</tr></thead>")
	}

	b.WriteString("<tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	return b.String()
}

// LineBreak は改行タグをcount個連結して返します
func LineBreak(count int) string {
	return strings.Repeat("<br>", count)
}

// Subscript はテキストを下付き文字にします
func Subscript(text string) string {
	return fmt.Sprintf("<sub>%s</sub>", html.EscapeString(text))
}

// Superscript はテキストを上付き文字にします
func Superscript(text string) string {
	return fmt.Sprintf("<sup>%s</sup>", html.EscapeString(text))
}

// Div はコンテンツをdiv要素で包みます
// content はHTMLを含められるためエスケープしません
func Div(content, cssClass, style string) string {
	var attrs []string
	if cssClass != "" {
		attrs = append(attrs, fmt.Sprintf(`class="%s"`, html.EscapeString(cssClass)))
	}
	if style != "" {
		attrs = append(attrs, fmt.Sprintf(`style="%s"`, html.EscapeString(style)))
	}

	attrStr := ""
	if len(attrs) > 0 {
		attrStr = " " + strings.Join(attrs, " ")
	}
	return fmt.Sprintf("<div%s>%s</div>", attrStr, content)
}

// MathJaxInline はLaTeX数式をインライン表示用に整形します
func MathJaxInline(latex string) string {
	return fmt.Sprintf(`\(%s\)`, latex)
}

// MathJaxBlock はLaTeX数式をブロック表示用に整形します
func MathJaxBlock(latex string) string {
	return fmt.Sprintf(`\[%s\]`, latex)
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// StripHTML はHTMLタグを除去し、実体参照をデコードした素のテキストを返します
func StripHTML(text string) string {
	return html.UnescapeString(htmlTagRe.ReplaceAllString(text, ""))
}

// TextLength はHTMLタグを除いた可視文字数を返します
func TextLength(text string) int {
	return utf8.RuneCountInString(StripHTML(text))
}
