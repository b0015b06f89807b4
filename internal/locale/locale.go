// Package locale resolves user-facing strings from the layout's string
// tables.
package locale

import (
	"sort"

	"golang.org/x/text/language"
)

// KeyClickToStart is the load-screen tip shown once loading completes.
const KeyClickToStart = "click_to_start"

// Fallback is used when the layout carries no string for a key.
var Fallback = map[string]string{
	KeyClickToStart: "點擊螢幕任何地方開始",
}

// Catalog matches a preferred locale against the layout's tables.
type Catalog struct {
	matcher language.Matcher
	tables  []map[string]string
}

// NewCatalog builds a catalog from tables keyed by BCP 47 tag. Tags that do
// not parse are skipped. When def names one of the tables it is the match of
// last resort; otherwise the alphabetically first tag is.
func NewCatalog(tables map[string]map[string]string, def string) *Catalog {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		if _, err := language.Parse(k); err == nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for i, k := range keys {
		if k == def && i > 0 {
			keys[0], keys[i] = keys[i], keys[0]
		}
	}

	c := &Catalog{}
	tags := make([]language.Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, language.MustParse(k))
		c.tables = append(c.tables, tables[k])
	}
	if len(tags) > 0 {
		c.matcher = language.NewMatcher(tags)
	}
	return c
}

// Lookup returns key in the table best matching preferred (a BCP 47 tag or
// an Accept-Language value), then Fallback, then the key itself.
func (c *Catalog) Lookup(preferred, key string) string {
	if c.matcher != nil {
		want, _, _ := language.ParseAcceptLanguage(preferred)
		_, idx, _ := c.matcher.Match(want...)
		if s, ok := c.tables[idx][key]; ok {
			return s
		}
	}
	if s, ok := Fallback[key]; ok {
		return s
	}
	return key
}
