package source

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/cognicore/semplan/pkg/semplan/stoplist"
)

// Phrase is a short text lifted from a page.
type Phrase struct {
	Text    string
	Catalog bool
}

const (
	maxPhraseChars = 50
	maxPhraseWords = 4
	minPhraseChars = 3
)

var catalogMarkers = []string{"product", "shop", "catalog"}

var shoppingWords = map[string]bool{
	"buy": true, "cart": true, "shop": true, "store": true, "product": true,
	"products": true, "catalog": true, "price": true, "prices": true, "checkout": true,
}

// ExtractPhrases collects candidate phrases from an HTML document: the
// title, the meta description, h1 to h3 headings and short link and button
// texts. Longer texts are split at punctuation; segments over four words or
// fifty characters are dropped, as are stopword-only ones. Phrases come back
// lower-cased in document order without duplicates.
func ExtractPhrases(r io.Reader, stops *stoplist.Manager) ([]Phrase, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	x := &extractor{stops: stops, index: make(map[string]int)}
	x.walk(doc, false)
	return x.phrases, nil
}

type extractor struct {
	stops   *stoplist.Manager
	phrases []Phrase
	index   map[string]int
}

func (x *extractor) walk(n *html.Node, catalog bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template", "svg":
			return
		}
		catalog = catalog || catalogAttr(n)

		switch n.Data {
		case "title", "h1", "h2", "h3":
			x.addSplit(textOf(n), catalog)
			return
		case "meta":
			if strings.EqualFold(attr(n, "name"), "description") {
				x.addSplit(attr(n, "content"), catalog)
			}
			return
		case "a", "button":
			if text := collapse(textOf(n)); text != "" && len(text) < maxPhraseChars {
				x.add(text, catalog)
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.walk(c, catalog)
	}
}

func (x *extractor) addSplit(text string, catalog bool) {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '|', ':', ',', '.', '!', '?', ';', '·', '•', '–', '—', '/', '(', ')':
			return true
		}
		return r == '\n'
	})
	for _, s := range segments {
		x.add(s, catalog)
	}
}

func (x *extractor) add(text string, catalog bool) {
	text = strings.ToLower(collapse(strings.Trim(text, " -\t\n\"'")))
	words := strings.Fields(text)
	if len(text) < minPhraseChars || len(text) >= maxPhraseChars || len(words) > maxPhraseWords {
		return
	}
	if x.stops.OnlyStops(text) || !hasLetter(text) {
		return
	}
	for _, w := range words {
		if shoppingWords[w] {
			catalog = true
		}
	}

	if i, ok := x.index[text]; ok {
		x.phrases[i].Catalog = x.phrases[i].Catalog || catalog
		return
	}
	x.index[text] = len(x.phrases)
	x.phrases = append(x.phrases, Phrase{Text: text, Catalog: catalog})
}

func catalogAttr(n *html.Node) bool {
	for _, key := range []string{"class", "id"} {
		v := strings.ToLower(attr(n, key))
		for _, m := range catalogMarkers {
			if strings.Contains(v, m) {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
