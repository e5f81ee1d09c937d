package email

import (
	"regexp"
	"strings"
)

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// htmlBlockPattern matches the head, style and script blocks whose text is
// never shown to a reader.
var htmlBlockPattern = regexp.MustCompile(`(?is)<(head|style|script)[^>]*>.*?</(head|style|script)>`)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// stripHTML reduces an HTML body to plain text good enough for keyword
// and date matching.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := htmlBlockPattern.ReplaceAllString(html, "")
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>", "</tr>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")
	result = entityReplacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
