package openlibrary

import "strings"

// Document is a decoded JSON object from the catalog. Only a handful of keys
// are read; everything else is ignored.
type Document map[string]any

// String returns the value at key when it is a non-blank string.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// FirstAuthorKey returns authors[0].key, e.g. "/authors/OL19981A".
func (d Document) FirstAuthorKey() (string, bool) {
	authors, ok := d["authors"].([]any)
	if !ok || len(authors) == 0 {
		return "", false
	}
	first, ok := authors[0].(map[string]any)
	if !ok {
		return "", false
	}
	return Document(first).String("key")
}
