// Package extractor pulls absolute hyperlinks out of fetched markup.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Extractor turns anchor hrefs into absolute URLs. It holds no per-call state
// and can be shared between workers.
type Extractor struct {
	keepSelfLinks bool
	maxTokenBytes int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelfLinks controls whether empty and fragment-only hrefs are emitted.
// When enabled they resolve to the base URL like any other URL join.
func WithSelfLinks(keep bool) Option {
	return func(e *Extractor) { e.keepSelfLinks = keep }
}

// WithMaxTokenBytes caps the size of a single markup token. Zero means no cap.
func WithMaxTokenBytes(n int) Option {
	return func(e *Extractor) { e.maxTokenBytes = n }
}

// New creates a new Extractor instance
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Links yields one absolute URL per anchor carrying an href, in document
// order. Markup errors are recovered by the tokenizer; only a hard failure
// ends the sequence early, reported as a final pair with an empty URL.
func (e *Extractor) Links(markup, baseURL string) iter.Seq2[string, error] {
	return e.LinksFrom(strings.NewReader(markup), baseURL)
}

// LinksFrom is Links over a reader. Read errors surface the same way as
// tokenizer errors.
func (e *Extractor) LinksFrom(r io.Reader, baseURL string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		base, err := url.Parse(baseURL)
		if err != nil {
			yield("", fmt.Errorf("parse base url: %w", err))
			return
		}

		z := html.NewTokenizer(r)
		if e.maxTokenBytes > 0 {
			z.SetMaxBuf(e.maxTokenBytes)
		}
		for {
			switch z.Next() {
			case html.ErrorToken:
				if err := z.Err(); !errors.Is(err, io.EOF) {
					yield("", fmt.Errorf("tokenize markup: %w", err))
				}
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				href, ok := anchorHref(z)
				if !ok {
					continue
				}
				if !e.keepSelfLinks && isSelfLink(href) {
					continue
				}
				if !yield(Resolve(base, href), nil) {
					return
				}
			}
		}
	}
}

// All drains Links into a slice, returning the links found before any error.
func (e *Extractor) All(markup, baseURL string) ([]string, error) {
	var out []string
	for link, err := range e.Links(markup, baseURL) {
		if err != nil {
			return out, err
		}
		out = append(out, link)
	}
	return out, nil
}

// Resolve joins href against base the way RFC 3986 section 5.2 does, on the
// raw text. The href keeps its own characters: nothing is escaped or
// unescaped, so "/produit/café" and "/sale-50%-off" come back as written.
// Surrounding whitespace and embedded tab, CR and LF are dropped, as browsers
// do. Every href yields a URL.
func Resolve(base *url.URL, href string) string {
	ref := stripNewlines(strings.TrimSpace(href))

	ref, fragment, _ := strings.Cut(ref, "#")
	ref, query, _ := strings.Cut(ref, "?")

	var out strings.Builder
	switch {
	case hasScheme(ref):
		out.WriteString(ref)
	case strings.HasPrefix(ref, "//"):
		out.WriteString(base.Scheme + ":" + ref)
	case ref == "":
		out.WriteString(authority(base) + base.EscapedPath())
		if query == "" {
			query = base.RawQuery
		}
	case ref[0] == '/':
		out.WriteString(authority(base) + removeDotSegments(ref))
	default:
		dir := base.EscapedPath()
		dir = dir[:strings.LastIndex(dir, "/")+1]
		out.WriteString(authority(base) + removeDotSegments(dir+ref))
	}
	if query != "" {
		out.WriteString("?" + query)
	}
	if fragment != "" {
		out.WriteString("#" + fragment)
	}
	return out.String()
}

func stripNewlines(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
}

// hasScheme reports whether ref starts with "scheme:" and is therefore
// already absolute.
func hasScheme(ref string) bool {
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}

func authority(base *url.URL) string {
	if base.Scheme == "" && base.Host == "" {
		return ""
	}
	var b strings.Builder
	if base.Scheme != "" {
		b.WriteString(base.Scheme + ":")
	}
	if base.Host != "" || base.Scheme == "file" {
		b.WriteString("//")
		if base.User != nil {
			b.WriteString(base.User.String() + "@")
		}
		b.WriteString(base.Host)
	}
	return b.String()
}

// removeDotSegments collapses "." and ".." path elements. The result always
// starts with "/" and keeps a trailing slash when the input ends in one or in
// a dot segment.
func removeDotSegments(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		last := i == len(segs)-1
		switch seg {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}

// anchorHref returns the first href attribute of an <a> tag. The tokenizer
// lower-cases tag and attribute names.
func anchorHref(z *html.Tokenizer) (string, bool) {
	name, hasAttr := z.TagName()
	if string(name) != "a" || !hasAttr {
		return "", false
	}
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return string(val), true
		}
		if !more {
			return "", false
		}
	}
}

func isSelfLink(href string) bool {
	h := strings.TrimSpace(href)
	return h == "" || strings.HasPrefix(h, "#")
}
