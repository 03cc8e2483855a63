package study

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yolodolo42/edumind/internal/llm"
)

const defaultSourceTitle = "Web Source"

// ResearchResult is a grounded answer with the sources it cites.
type ResearchResult struct {
	Content string       `json:"content"`
	Sources []llm.Source `json:"sources"`
}

// Research answers query from web sources. Sources come from the provider's
// citation metadata when present, otherwise from links in the answer text.
func (s *Service) Research(ctx context.Context, query string) (*ResearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyInput
	}

	resp, err := s.chat(ctx, ToolResearch, &llm.ChatRequest{
		Messages: llm.UserMessage(query),
		Grounded: true,
	})
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	sources := resp.Sources
	if len(sources) == 0 {
		sources = ExtractLinks(resp.Content)
	}

	result := &ResearchResult{
		Content: orDefault(resp.Content, fallbackResearch),
		Sources: normalizeSources(sources),
	}
	s.record(ctx, ToolResearch, query, result.Markdown())
	return result, nil
}

// ExtractLinks returns the http(s) links in a Markdown document in order.
func ExtractLinks(content string) []llm.Source {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []llm.Source
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			out = append(out, llm.Source{
				Title: strings.TrimSpace(string(node.Text(src))),
				URI:   string(node.Destination),
			})
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL {
				out = append(out, llm.Source{URI: string(node.URL(src))})
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// normalizeSources drops non-web and duplicate URIs and fills missing titles.
func normalizeSources(in []llm.Source) []llm.Source {
	seen := make(map[string]bool, len(in))
	out := make([]llm.Source, 0, len(in))
	for _, src := range in {
		uri := strings.TrimSpace(src.URI)
		u, err := url.Parse(uri)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		if seen[uri] {
			continue
		}
		seen[uri] = true

		title := strings.TrimSpace(src.Title)
		if title == "" {
			title = defaultSourceTitle
		}
		out = append(out, llm.Source{Title: title, URI: uri})
	}
	return out
}

// Hostname returns the host part of a source URI for compact display.
func Hostname(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Markdown renders the answer followed by a source list.
func (r *ResearchResult) Markdown() string {
	if len(r.Sources) == 0 {
		return r.Content
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(r.Content, "\n"))
	b.WriteString("\n\n### Sources\n")
	for _, src := range r.Sources {
		fmt.Fprintf(&b, "- **%s** %s\n", src.Title, src.URI)
	}
	return strings.TrimRight(b.String(), "\n")
}
