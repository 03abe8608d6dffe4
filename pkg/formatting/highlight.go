package formatting

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// darkStyles は文字色の既定値を明るくすべきダークテーマの集合です
var darkStyles = map[string]bool{
	"monokai":        true,
	"github-dark":    true,
	"lightbulb":      true,
	"rrt":            true,
	"zenburn":        true,
	"nord":           true,
	"material":       true,
	"one-dark":       true,
	"dracula":        true,
	"nord-darker":    true,
	"gruvbox-dark":   true,
	"stata-dark":     true,
	"paraiso-dark":   true,
	"coffee":         true,
	"solarized-dark": true,
	"native":         true,
	"inkpot":         true,
	"fruity":         true,
	"vim":            true,
}

// HighlighterConfig はシンタックスハイライトの出力設定です
type HighlighterConfig struct {
	// Style はchromaのスタイル名（既定: monokai）
	Style string
	// LineNumbers は行番号を出力するかどうか
	LineNumbers bool
	// CenterFragments はコードブロックを中央寄せするかどうか
	CenterFragments bool
	// FontSize はコードのフォントサイズ（px、既定: 15）
	FontSize int
}

// DefaultHighlighterConfig は既定のハイライト設定を返します
func DefaultHighlighterConfig() HighlighterConfig {
	return HighlighterConfig{
		Style:           "monokai",
		LineNumbers:     false,
		CenterFragments: true,
		FontSize:        15,
	}
}

// Highlighter はコード片をAnkiカードに貼れるインラインスタイルのHTMLへ変換します
type Highlighter struct {
	config HighlighterConfig
}

// NewHighlighter は新しい Highlighter を作成します
func NewHighlighter(config HighlighterConfig) *Highlighter {
	if config.Style == "" {
		config.Style = "monokai"
	}
	if config.FontSize <= 0 {
		config.FontSize = 15
	}
	return &Highlighter{config: config}
}

// HighlightCode はコード文字列をシンタックスハイライトしたHTMLに変換します
// 未知の言語名はプレーンテキストとして扱います
func (h *Highlighter) HighlightCode(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(h.config.Style)
	if style == nil {
		style = styles.Fallback
	}

	options := []chromahtml.Option{
		chromahtml.WithCustomCSS(map[chroma.TokenType]string{
			chroma.PreWrapper: "padding-left:8px; padding-right:8px;",
		}),
	}
	if h.config.LineNumbers {
		options = append(options, chromahtml.WithLineNumbers(true))
	}
	formatter := chromahtml.New(options...)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize code: %w", err)
	}

	var highlighted strings.Builder
	if err := formatter.Format(&highlighted, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format code: %w", err)
	}

	colorStyle := "color:#222;"
	if darkStyles[strings.ToLower(h.config.Style)] {
		colorStyle = "color:#ccc;"
	}
	tableStyle := fmt.Sprintf(`style="%s font-size: %dpx;"`, colorStyle, h.config.FontSize)

	var result string
	if h.config.CenterFragments {
		result = fmt.Sprintf("<center><table %s><tbody><tr><td>%s</td></tr></tbody></table></center><br>",
			tableStyle, highlighted.String())
	} else {
		result = fmt.Sprintf("<table %s><tbody><tr><td>%s</td></tr></tbody></table>",
			tableStyle, highlighted.String())
	}

	return escapeAnkiSyntax(result), nil
}

// codeBlockRe は言語指定付きのコードブロックにマッチします
var codeBlockRe = regexp.MustCompile(`(?s)<pre><code\s+class="language-(\w+)">(.*?)</code></pre>`)

// HighlightCodeBlocks はHTML中のコードブロックをすべてハイライト済みに置き換えます
// <pre><code class="language-X">...</code></pre> の形式だけを対象とし、
// インラインの <code> タグは変更しません
func (h *Highlighter) HighlightCodeBlocks(htmlContent string) (string, error) {
	var firstErr error
	result := codeBlockRe.ReplaceAllStringFunc(htmlContent, func(match string) string {
		groups := codeBlockRe.FindStringSubmatch(match)
		highlighted, err := h.HighlightCode(html.UnescapeString(groups[2]), groups[1])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return highlighted
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// escapeAnkiSyntax はAnkiのテンプレート構文をエスケープします
// コード中の {{ }} :: がテンプレートとして解釈されるのを防ぎます
func escapeAnkiSyntax(text string) string {
	text = strings.ReplaceAll(text, "{{", "{<!---->{")
	text = strings.ReplaceAll(text, "}}", "}<!---->}")
	text = strings.ReplaceAll(text, "::", ":<!---->:")
	return text
}
