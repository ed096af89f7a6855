package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ramgopal99/centipede/internal/expression"
	"github.com/ramgopal99/centipede/internal/values"
)

// partKind — вид узла разобранного шаблона.
type partKind int

const (
	partLiteral partKind = iota
	partRef
	partCall
)

// part — узел шаблона: литерал, ссылка {name} или вызов (name arg...).
type part struct {
	kind partKind
	text string    // литерал или имя переменной/процедуры
	args []segment // аргументы вызова
}

// segment — последовательность узлов, значения которых склеиваются.
type segment []part

// Template — разобранный шаблон.
//
// Синтаксис:
//
//	literal text        — выводится как есть
//	{name}              — значение переменной из scope
//	(name arg1 arg2)    — вызов процедуры из реестра выражений
//
// Аргументы вызова разделяются пробелами и сами могут содержать
// ссылки и вложенные вызовы: "(pad (sum {frame} 1) 4)".
// Токен вида "{a}_v" склеивается из частей.
//
// Template неизменяем и безопасен для конкурентного использования.
type Template struct {
	source string
	root   segment
}

// NewTemplate разбирает строку шаблона.
// Синтаксические ошибки возвращаются как *ParseError (ErrTemplateParse).
func NewTemplate(s string) (*Template, error) {
	root, err := parseSegment(s, s, 0)
	if err != nil {
		return nil, err
	}
	return &Template{source: s, root: root}, nil
}

// MustTemplate разбирает шаблон и паникует при ошибке.
// Используется только для тестов и констант.
func MustTemplate(s string) *Template {
	t, err := NewTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String возвращает исходную строку шаблона.
func (t *Template) String() string {
	if t == nil {
		return ""
	}
	return t.source
}

// IsEmpty возвращает true для пустого шаблона.
func (t *Template) IsEmpty() bool {
	return t == nil || t.source == ""
}

// References возвращает имена переменных, на которые ссылается шаблон,
// в порядке первого появления.
func (t *Template) References() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	collectRefs(t.root, seen, &names)
	return names
}

// Resolve разрешает шаблон с общим реестром процедур.
func (t *Template) Resolve(scope map[string]any) (string, error) {
	return t.ResolveWith(expression.Default(), scope)
}

// ResolveWith разрешает шаблон с указанным реестром процедур.
//
// Отсутствующие переменные — ErrUnresolvedReference со списком всех
// недостающих имён, неизвестная процедура — ErrUnknownProcedure.
// Scope не изменяется.
func (t *Template) ResolveWith(reg *expression.Registry, scope map[string]any) (string, error) {
	if t.IsEmpty() {
		return "", nil
	}

	var missing []string
	for _, name := range t.References() {
		if _, ok := scope[name]; !ok {
			missing = append(missing, "{"+name+"}")
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("template %q: %w: %s", t.source, ErrUnresolvedReference, strings.Join(missing, ", "))
	}

	out, err := t.root.resolve(reg, scope)
	if err != nil {
		return "", fmt.Errorf("template %q: %w", t.source, err)
	}
	return out, nil
}

// MarshalText возвращает исходную строку шаблона.
func (t *Template) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText разбирает шаблон из строки.
func (t *Template) UnmarshalText(data []byte) error {
	parsed, err := NewTemplate(string(data))
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// Resolve разбирает и разрешает строку шаблона за один вызов.
func Resolve(s string, scope map[string]any) (string, error) {
	t, err := NewTemplate(s)
	if err != nil {
		return "", err
	}
	return t.Resolve(scope)
}

// ResolveValue рекурсивно разрешает строки внутри значения.
// Обрабатывает map и slice; остальные типы возвращаются как есть.
func ResolveValue(value any, scope map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return Resolve(v, scope)

	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			resolved, err := ResolveValue(val, scope)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			result[key] = resolved
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			resolved, err := ResolveValue(val, scope)
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	case []string:
		result := make([]string, len(v))
		for i, val := range v {
			resolved, err := Resolve(val, scope)
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	default:
		return value, nil
	}
}

func (s segment) resolve(reg *expression.Registry, scope map[string]any) (string, error) {
	if len(s) == 1 && s[0].kind == partLiteral {
		return s[0].text, nil
	}

	var b strings.Builder
	for _, p := range s {
		switch p.kind {
		case partLiteral:
			b.WriteString(p.text)

		case partRef:
			v, ok := scope[p.text]
			if !ok {
				return "", fmt.Errorf("%w: {%s}", ErrUnresolvedReference, p.text)
			}
			b.WriteString(values.String(v))

		case partCall:
			args := make([]any, len(p.args))
			for i, arg := range p.args {
				resolved, err := arg.resolve(reg, scope)
				if err != nil {
					return "", err
				}
				args[i] = resolved
			}
			result, err := reg.Run(p.text, args...)
			if err != nil {
				return "", err
			}
			b.WriteString(result)
		}
	}
	return b.String(), nil
}

func collectRefs(s segment, seen map[string]bool, names *[]string) {
	for _, p := range s {
		switch p.kind {
		case partRef:
			if !seen[p.text] {
				seen[p.text] = true
				*names = append(*names, p.text)
			}
		case partCall:
			for _, arg := range p.args {
				collectRefs(arg, seen, names)
			}
		}
	}
}

// parseSegment разбирает строку слева направо в последовательность
// литералов, ссылок и вызовов. offset — позиция s внутри source.
func parseSegment(source, s string, offset int) (segment, error) {
	var (
		out     segment
		literal strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			out = append(out, part{kind: partLiteral, text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch s[i] {
		case '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, &ParseError{Template: source, Pos: offset + i, Message: "unclosed '{'"}
			}
			name := strings.TrimSpace(s[i+1 : i+1+end])
			if name == "" {
				return nil, &ParseError{Template: source, Pos: offset + i, Message: "empty reference"}
			}
			if strings.ContainsAny(name, "{}()") {
				return nil, &ParseError{Template: source, Pos: offset + i, Message: "invalid reference name " + name}
			}
			flush()
			out = append(out, part{kind: partRef, text: name})
			i += end + 2

		case '(':
			end, err := matchParen(source, s, offset, i)
			if err != nil {
				return nil, err
			}
			call, err := parseCall(source, s[i+1:end], offset+i+1)
			if err != nil {
				return nil, err
			}
			flush()
			out = append(out, call)
			i = end + 1

		default:
			literal.WriteByte(s[i])
			i++
		}
	}
	flush()
	return out, nil
}

// matchParen находит закрывающую скобку для '(' в позиции start.
func matchParen(source, s string, offset, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, &ParseError{Template: source, Pos: offset + start, Message: "unclosed '('"}
}

// parseCall разбирает содержимое скобок "name arg1 arg2".
func parseCall(source, content string, offset int) (part, error) {
	tokens, err := splitTokens(source, content, offset)
	if err != nil {
		return part{}, err
	}
	if len(tokens) == 0 {
		return part{}, &ParseError{Template: source, Pos: offset - 1, Message: "empty procedure call"}
	}

	name := tokens[0]
	if strings.ContainsAny(name.text, "{}()") {
		return part{}, &ParseError{Template: source, Pos: name.pos, Message: "invalid procedure name " + name.text}
	}

	call := part{kind: partCall, text: name.text, args: make([]segment, 0, len(tokens)-1)}
	for _, tok := range tokens[1:] {
		arg, err := parseSegment(source, tok.text, tok.pos)
		if err != nil {
			return part{}, err
		}
		call.args = append(call.args, arg)
	}
	return call, nil
}

type token struct {
	text string
	pos  int
}

// splitTokens делит строку по пробелам, не разрывая содержимое
// скобок () и {}.
func splitTokens(source, s string, offset int) ([]token, error) {
	var (
		tokens []token
		start  = -1
		depth  int
		brace  bool
	)

	for i, r := range s {
		switch {
		case r == '{' && !brace:
			brace = true
		case r == '}' && brace:
			brace = false
		case r == '(' && !brace:
			depth++
		case r == ')' && !brace:
			depth--
		}

		if unicode.IsSpace(r) && depth == 0 && !brace {
			if start >= 0 {
				tokens = append(tokens, token{text: s[start:i], pos: offset + start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if brace {
		return nil, &ParseError{Template: source, Pos: offset + len(s), Message: "unclosed '{'"}
	}
	if depth != 0 {
		return nil, &ParseError{Template: source, Pos: offset + len(s), Message: "unbalanced '('"}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: s[start:], pos: offset + start})
	}
	return tokens, nil
}
