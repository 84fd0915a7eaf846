// Package charset detects and decodes the character encoding of fetched
// documents. Feed sources frequently mislabel their encoding, so every
// function here degrades to UTF-8 instead of returning an error.
package charset

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

const Default = "utf-8"

// SnippetSize is how many leading body bytes are inspected for an XML prolog.
const SnippetSize = 512

var (
	headerCharset = regexp.MustCompile(`(?i)charset=([^;]+)`)
	xmlProlog     = regexp.MustCompile(`(?i)<\?xml[^>]*encoding=["']([^"']+)["'][^>]*\?>`)
)

// Detect returns a lowercase encoding label, preferring the Content-Type
// charset parameter, then the XML prolog declaration in snippet.
func Detect(contentType, snippet string) string {
	if contentType != "" {
		if m := headerCharset.FindStringSubmatch(contentType); m != nil {
			if label := normalize(m[1]); label != "" {
				return label
			}
		}
	}
	if snippet != "" {
		if m := xmlProlog.FindStringSubmatch(snippet); m != nil {
			if label := normalize(m[1]); label != "" {
				return label
			}
		}
	}
	return Default
}

// DetectBytes runs Detect against the first SnippetSize bytes of body.
func DetectBytes(contentType string, body []byte) string {
	snippet := body
	if len(snippet) > SnippetSize {
		snippet = snippet[:SnippetSize]
	}
	return Detect(contentType, string(snippet))
}

// Decode converts data from the named encoding to UTF-8 text. Unknown labels
// and decoder failures fall back to permissive UTF-8.
func Decode(data []byte, label string) string {
	enc := lookup(label)
	if enc == nil {
		return permissive(data)
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return permissive(data)
	}
	return strings.TrimPrefix(string(out), "\uFEFF")
}

func lookup(label string) encoding.Encoding {
	label = normalize(label)
	if label == "" {
		label = Default
	}

	if enc, err := htmlindex.Get(label); err == nil && enc != nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc
	}
	return nil
}

func permissive(data []byte) string {
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return strings.TrimPrefix(s, "\uFEFF")
}

func normalize(label string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(label), `"'`))
}
