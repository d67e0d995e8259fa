package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/inkwell/internal/config"
)

// Documents are shown in pages that do not carry a chroma stylesheet, so the
// colours are inlined.
var formatter = html.New(
	html.WithClasses(false),
	html.TabWidth(4),
)

// HighlightCode renders code as highlighted HTML. On failure the code is
// returned escaped and unhighlighted.
func HighlightCode(code, language, theme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		renderLogger.Debug().Err(err).Str("language", language).Msg("Error tokenising code block")
		return "<pre><code>" + escape(code) + "</code></pre>"
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		renderLogger.Debug().Err(err).Str("language", language).Msg("Error formatting code block")
		return "<pre><code>" + escape(code) + "</code></pre>"
	}

	return config.RegexCalloutHTML.ReplaceAllString(buf.String(), `<span class="callout">$1</span>`)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return htmlEscaper.Replace(s)
}
