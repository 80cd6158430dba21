package purge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Usage is the set of names found in content sources: tag names, classes,
// ids and any other word-like tokens.
type Usage map[string]struct{}

// Add records a name.
func (u Usage) Add(name string) {
	if name != "" {
		u[name] = struct{}{}
	}
}

// Has reports whether name was seen.
func (u Usage) Has(name string) bool {
	_, ok := u[name]
	return ok
}

// merge adds every name of other.
func (u Usage) merge(other Usage) {
	for name := range other {
		u[name] = struct{}{}
	}
}

var (
	wordPattern  = regexp.MustCompile(`[A-Za-z0-9_-]+`)
	tokenPattern = regexp.MustCompile("[^\\s<>\"'`=]+")
)

// ExpandSources resolves glob patterns (with ** support) against root and
// returns the matching regular files, sorted and deduplicated. A pattern that
// matches nothing is not an error.
func ExpandSources(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, pattern)
		}

		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			return nil, fmt.Errorf("invalid purge source pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanFiles reads files concurrently and collects their usages.
func ScanFiles(ctx context.Context, files []string) (Usage, error) {
	var (
		mu    sync.Mutex
		usage = make(Usage)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path) //nolint:gosec // G304: paths come from declared purge sources
			if err != nil {
				return fmt.Errorf("failed to read purge source: %w", err)
			}

			found, err := Extract(path, content)
			if err != nil {
				return fmt.Errorf("failed to scan purge source %s: %w", path, err)
			}

			mu.Lock()
			usage.merge(found)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return usage, nil
}

// Extract collects usages from one content file, choosing the extractor by
// file extension.
func Extract(path string, content []byte) (Usage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return extractHTML(bytes.NewReader(content))
	case ".md", ".markdown":
		return extractMarkdown(content)
	default:
		return extractText(content), nil
	}
}

// extractHTML records tag names, ids, classes, attribute names and words of
// attribute values and inline scripts.
func extractHTML(r io.Reader) (Usage, error) {
	usage := make(Usage)
	z := html.NewTokenizer(r)
	inScript := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return usage, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			usage.Add(strings.ToLower(tok.Data))
			inScript = tok.Data == "script"
			for _, attr := range tok.Attr {
				usage.Add(attr.Key)
				switch attr.Key {
				case "class", "id":
					for _, name := range strings.Fields(attr.Val) {
						usage.Add(name)
					}
				default:
					addWords(usage, []byte(attr.Val))
				}
			}

		case html.EndTagToken:
			inScript = false

		case html.TextToken:
			if inScript {
				addWords(usage, z.Text())
			}
		}
	}
}

// extractMarkdown renders Markdown to HTML, keeping raw HTML blocks, and
// scans the result.
func extractMarkdown(content []byte) (Usage, error) {
	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))

	var buf bytes.Buffer
	if err := md.Convert(content, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return extractHTML(&buf)
}

// extractText treats content as opaque text, such as templates or scripts.
func extractText(content []byte) Usage {
	usage := make(Usage)
	addWords(usage, content)
	return usage
}

func addWords(usage Usage, content []byte) {
	for _, w := range wordPattern.FindAll(content, -1) {
		usage.Add(string(w))
	}
	for _, t := range tokenPattern.FindAll(content, -1) {
		usage.Add(string(t))
	}
}
