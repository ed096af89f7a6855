package crawler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ramgopal99/centipede/internal/values"
)

// Ошибки crawler'ов.
var (
	// ErrInvalidVarName — переменная не найдена.
	ErrInvalidVarName = errors.New("invalid variable name")

	// ErrInvalidTagName — тег не найден.
	ErrInvalidTagName = errors.New("invalid tag name")

	// ErrUnknownType — тип crawler'а не зарегистрирован.
	ErrUnknownType = errors.New("unknown crawler type")

	// ErrInvalidPath — путь для path crawler'а не существует.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidList — ожидался JSON-массив crawler'ов.
	ErrInvalidList = errors.New("invalid crawler list")
)

// Crawler — единица данных, проходящая через pipeline.
//
// Crawler несёт тип (дискриминатор для matcher'а), переменные и теги.
// Переменные, помеченные как context, автоматически переносятся
// на результаты задач и на crawler'ы дочерних узлов.
//
// Движок никогда не изменяет полученный crawler: перед установкой
// переменных он делает Clone.
type Crawler interface {
	// Type возвращает тип crawler'а ("exr", "mov", "generic", ...).
	Type() string

	// Var возвращает значение переменной или ErrInvalidVarName.
	Var(name string) (any, error)

	// HasVar проверяет наличие переменной.
	HasVar(name string) bool

	// SetVar устанавливает переменную.
	// isContext=true помечает её как context, false снимает пометку.
	SetVar(name string, value any, isContext bool)

	// VarNames возвращает отсортированные имена переменных.
	VarNames() []string

	// ContextVarNames возвращает отсортированные имена context-переменных.
	ContextVarNames() []string

	// Tag возвращает значение тега или ErrInvalidTagName.
	Tag(name string) (any, error)

	// HasTag проверяет наличие тега.
	HasTag(name string) bool

	// SetTag устанавливает тег.
	SetTag(name string, value any)

	// TagNames возвращает отсортированные имена тегов.
	TagNames() []string

	// Clone возвращает независимую глубокую копию.
	Clone() Crawler

	// ToSerializable возвращает структурную форму для JSON.
	ToSerializable() Serialized

	// FromSerializable восстанавливает состояние из структурной формы.
	FromSerializable(s Serialized) error
}

// Base — стандартная реализация Crawler.
type Base struct {
	typ         string
	vars        map[string]any
	contextVars map[string]struct{}
	tags        map[string]any
}

// New создаёт пустой crawler указанного типа.
func New(typ string) *Base {
	return &Base{
		typ:         typ,
		vars:        make(map[string]any),
		contextVars: make(map[string]struct{}),
		tags:        make(map[string]any),
	}
}

// Type возвращает тип crawler'а.
func (c *Base) Type() string {
	return c.typ
}

// Var возвращает значение переменной.
func (c *Base) Var(name string) (any, error) {
	v, ok := c.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVarName, name)
	}
	return v, nil
}

// HasVar проверяет наличие переменной.
func (c *Base) HasVar(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// SetVar устанавливает переменную.
func (c *Base) SetVar(name string, value any, isContext bool) {
	if isContext {
		c.contextVars[name] = struct{}{}
	} else {
		delete(c.contextVars, name)
	}
	c.vars[name] = value
}

// VarNames возвращает отсортированные имена переменных.
func (c *Base) VarNames() []string {
	return sortedNames(c.vars)
}

// ContextVarNames возвращает отсортированные имена context-переменных.
func (c *Base) ContextVarNames() []string {
	names := make([]string, 0, len(c.contextVars))
	for name := range c.contextVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tag возвращает значение тега.
func (c *Base) Tag(name string) (any, error) {
	v, ok := c.tags[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTagName, name)
	}
	return v, nil
}

// HasTag проверяет наличие тега.
func (c *Base) HasTag(name string) bool {
	_, ok := c.tags[name]
	return ok
}

// SetTag устанавливает тег.
func (c *Base) SetTag(name string, value any) {
	c.tags[name] = value
}

// TagNames возвращает отсортированные имена тегов.
func (c *Base) TagNames() []string {
	return sortedNames(c.tags)
}

// Clone возвращает глубокую копию через структурную форму.
func (c *Base) Clone() Crawler {
	clone := New(c.typ)
	for k, v := range c.vars {
		clone.vars[k] = values.Copy(v)
	}
	for k := range c.contextVars {
		clone.contextVars[k] = struct{}{}
	}
	for k, v := range c.tags {
		clone.tags[k] = values.Copy(v)
	}
	return clone
}

// ToSerializable возвращает структурную форму crawler'а.
func (c *Base) ToSerializable() Serialized {
	return Serialized{
		Type:            c.typ,
		Vars:            values.CopyMap(c.vars),
		ContextVarNames: c.ContextVarNames(),
		Tags:            values.CopyMap(c.tags),
	}
}

// FromSerializable восстанавливает состояние crawler'а.
// Текущие переменные и теги заменяются.
func (c *Base) FromSerializable(s Serialized) error {
	if s.Type != "" {
		c.typ = s.Type
	}

	c.vars = make(map[string]any, len(s.Vars))
	c.contextVars = make(map[string]struct{}, len(s.ContextVarNames))
	c.tags = make(map[string]any, len(s.Tags))

	for k, v := range s.Vars {
		c.vars[k] = values.Copy(v)
	}
	for _, name := range s.ContextVarNames {
		if _, ok := c.vars[name]; !ok {
			return fmt.Errorf("%w: context variable %q has no value", ErrInvalidVarName, name)
		}
		c.contextVars[name] = struct{}{}
	}
	for k, v := range s.Tags {
		c.tags[k] = values.Copy(v)
	}
	return nil
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsContextVar проверяет, помечена ли переменная как context.
func IsContextVar(c Crawler, name string) bool {
	for _, n := range c.ContextVarNames() {
		if n == name {
			return true
		}
	}
	return false
}
