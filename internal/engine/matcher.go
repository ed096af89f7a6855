package engine

import (
	"fmt"
	"sort"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/values"
)

// Ключи metadata задачи, из которых строится Matcher.
const (
	MetadataMatchTypes = "match.types"
	MetadataMatchVars  = "match.vars"
)

// Matcher — предикат над типом crawler'а и значениями его переменных.
//
// Crawler принимается, если:
//   - список типов пуст или содержит тип crawler'а
//   - для каждого критерия переменная есть у crawler'а и её значение
//     входит в список допустимых
//
// Значения сравниваются в строковой форме (values.String).
type Matcher struct {
	types map[string]struct{}
	vars  map[string]map[string]struct{}
}

// NewMatcher создаёт matcher. Пустые types — любой тип.
func NewMatcher(types []string, vars map[string][]string) *Matcher {
	m := &Matcher{
		types: make(map[string]struct{}, len(types)),
		vars:  make(map[string]map[string]struct{}, len(vars)),
	}
	for _, t := range types {
		m.types[t] = struct{}{}
	}
	for name, accepted := range vars {
		set := make(map[string]struct{}, len(accepted))
		for _, v := range accepted {
			set[v] = struct{}{}
		}
		m.vars[name] = set
	}
	return m
}

// MatcherFromMetadata строит matcher из metadata задачи
// (match.types, match.vars). Значения могут быть списками или скалярами.
func MatcherFromMetadata(meta map[string]any) (*Matcher, error) {
	types, err := values.GetStringSlice(meta, MetadataMatchTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMatchMetadata, MetadataMatchTypes, err)
	}
	vars, err := values.GetStringSliceMap(meta, MetadataMatchVars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMatchMetadata, err)
	}
	return NewMatcher(types, vars), nil
}

// Accepts проверяет, подходит ли crawler.
func (m *Matcher) Accepts(c crawler.Crawler) bool {
	if len(m.types) > 0 {
		if _, ok := m.types[c.Type()]; !ok {
			return false
		}
	}

	for name, accepted := range m.vars {
		v, err := c.Var(name)
		if err != nil {
			return false
		}
		if _, ok := accepted[values.String(v)]; !ok {
			return false
		}
	}
	return true
}

// Types возвращает отсортированный список допустимых типов.
func (m *Matcher) Types() []string {
	types := make([]string, 0, len(m.types))
	for t := range m.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Vars возвращает критерии по переменным (значения отсортированы).
func (m *Matcher) Vars() map[string][]string {
	vars := make(map[string][]string, len(m.vars))
	for name, set := range m.vars {
		accepted := make([]string, 0, len(set))
		for v := range set {
			accepted = append(accepted, v)
		}
		sort.Strings(accepted)
		vars[name] = accepted
	}
	return vars
}
