package engine

import (
	"fmt"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/values"
)

// Match — crawler, прошедший query, и разрешённый путь.
// Пустой FilePath означает «без файла»: crawler всё равно
// передаётся дальше.
type Match struct {
	Crawler  crawler.Crawler
	FilePath string
}

// Query объединяет Matcher с шаблонами target и filter.
type Query struct {
	matcher *Matcher
	target  *Template
	filter  *Template
}

// NewQuery создаёт query. nil-шаблоны считаются пустыми,
// nil-matcher принимает всё.
func NewQuery(m *Matcher, target, filter *Template) *Query {
	if m == nil {
		m = NewMatcher(nil, nil)
	}
	return &Query{matcher: m, target: target, filter: filter}
}

// Run отбирает crawler'ы и разрешает для них путь.
//
// Порядок результата совпадает с порядком входа. Scope шаблонов —
// переменные crawler'а, поверх которых накладывается extraScope.
// Crawler отбрасывается, если filter разрешился в "", "0" или "false".
func (q *Query) Run(crawlers []crawler.Crawler, extraScope map[string]any) ([]Match, error) {
	matches := make([]Match, 0, len(crawlers))

	for _, c := range crawlers {
		if !q.matcher.Accepts(c) {
			continue
		}

		scope := Scope(c, extraScope)

		var filePath string
		if !q.target.IsEmpty() {
			resolved, err := q.target.Resolve(scope)
			if err != nil {
				return nil, fmt.Errorf("target: %w", err)
			}
			filePath = resolved
		}

		if !q.filter.IsEmpty() {
			resolved, err := q.filter.Resolve(scope)
			if err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
			if !values.Truthy(resolved) {
				continue
			}
		}

		matches = append(matches, Match{Crawler: c, FilePath: filePath})
	}
	return matches, nil
}

// Scope собирает scope шаблона: переменные crawler'а и extra поверх них.
func Scope(c crawler.Crawler, extra map[string]any) map[string]any {
	names := c.VarNames()
	scope := make(map[string]any, len(names)+len(extra))
	for _, name := range names {
		v, err := c.Var(name)
		if err != nil {
			continue
		}
		scope[name] = v
	}
	for k, v := range extra {
		scope[k] = v
	}
	return scope
}
