package engine

import (
	"errors"
	"fmt"

	"github.com/ramgopal99/centipede/internal/expression"
)

// Ошибки шаблонов.
var (
	// ErrTemplateParse — шаблон синтаксически некорректен
	// (незакрытая скобка, пустая ссылка, пустой вызов).
	ErrTemplateParse = errors.New("template parse failed")

	// ErrUnresolvedReference — переменная {name} отсутствует в scope.
	ErrUnresolvedReference = errors.New("unresolved template reference")

	// ErrUnknownProcedure — вызванная процедура не зарегистрирована.
	ErrUnknownProcedure = expression.ErrUnknownProcedure
)

// Ошибки matcher'а.
var (
	// ErrInvalidMatchMetadata — metadata match.types / match.vars
	// имеет неверную форму.
	ErrInvalidMatchMetadata = errors.New("invalid match metadata")
)

// ParseError — ошибка разбора шаблона с позицией.
type ParseError struct {
	Template string // исходная строка шаблона
	Pos      int    // позиция (в байтах), где обнаружена ошибка
	Message  string // описание ошибки
}

// Error реализует интерфейс error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("template %q: %s at %d", e.Template, e.Message, e.Pos)
}

// Unwrap возвращает ErrTemplateParse.
func (e *ParseError) Unwrap() error {
	return ErrTemplateParse
}
