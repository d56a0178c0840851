package extract

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Structure summarises the block structure embedded in markup text.
type Structure struct {
	ListItems        int
	TableRows        int
	TableColumns     int
	Tables           int
	HeaderCells      int
	Images           int
	ImagesMissingAlt int
}

// AnalyzeMarkup tokenizes markup and counts list items, table rows, the widest
// table row and images. Malformed markup is counted as far as it parses.
func AnalyzeMarkup(markup string) Structure {
	var s Structure
	if !strings.Contains(markup, "<") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	cells := 0
	inRow := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if inRow && cells > s.TableColumns {
				s.TableColumns = cells
			}
			return s
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Li:
				s.ListItems++
			case atom.Table:
				s.Tables++
			case atom.Tr:
				if inRow && cells > s.TableColumns {
					s.TableColumns = cells
				}
				s.TableRows++
				inRow = true
				cells = 0
			case atom.Td:
				cells++
			case atom.Th:
				cells++
				s.HeaderCells++
			case atom.Img:
				s.Images++
				if !hasAttr(z, "alt") {
					s.ImagesMissingAlt++
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Tr {
				if cells > s.TableColumns {
					s.TableColumns = cells
				}
				inRow = false
				cells = 0
			}
		}
	}
}

// hasAttr reports whether the current tag carries the named attribute.
// An empty alt="" counts as present; it marks a decorative image.
func hasAttr(z *html.Tokenizer, name string) bool {
	for {
		key, _, more := z.TagAttr()
		if string(key) == name {
			return true
		}
		if !more {
			return false
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
