package expression

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ramgopal99/centipede/internal/values"
)

// Ошибки выражений.
var (
	// ErrUnknownProcedure — процедура не зарегистрирована.
	ErrUnknownProcedure = errors.New("unknown procedure")

	// ErrInvalidArgument — аргумент процедуры не удалось интерпретировать.
	ErrInvalidArgument = errors.New("invalid procedure argument")
)

// Procedure — функция, доступная в выражениях и шаблонах.
//
// Аргументы уже разрешены в строки; процедура сама приводит их
// к нужному типу (число кадра, ширина padding'а и т.д.).
type Procedure func(args ...string) (string, error)

// Registry — реестр процедур.
//
// Заполняется один раз при старте процесса, дальше используется
// только на чтение. Потокобезопасен.
type Registry struct {
	mu         sync.RWMutex
	procedures map[string]Procedure
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		procedures: make(map[string]Procedure),
	}
}

// Register регистрирует процедуру.
// Если процедура с таким именем уже существует, она будет перезаписана.
func (r *Registry) Register(name string, fn Procedure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procedures[name] = fn
}

// Get возвращает процедуру по имени.
// Возвращает ErrUnknownProcedure, если процедура не найдена.
func (r *Registry) Get(name string) (Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.procedures[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}
	return fn, nil
}

// Has проверяет, зарегистрирована ли процедура.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.procedures[name]
	return exists
}

// Names возвращает отсортированный список имён процедур.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run вызывает процедуру с аргументами произвольного типа.
// Аргументы приводятся к строкам через values.String.
func (r *Registry) Run(name string, args ...any) (string, error) {
	fn, err := r.Get(name)
	if err != nil {
		return "", err
	}

	strArgs := make([]string, len(args))
	for i, arg := range args {
		strArgs[i] = values.String(arg)
	}

	result, err := fn(strArgs...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

var defaultRegistry = NewRegistry()

// Default возвращает общий для процесса реестр.
func Default() *Registry {
	return defaultRegistry
}

// Register регистрирует процедуру в общем реестре.
func Register(name string, fn Procedure) {
	defaultRegistry.Register(name, fn)
}

// Has проверяет наличие процедуры в общем реестре.
func Has(name string) bool {
	return defaultRegistry.Has(name)
}

// Run вызывает процедуру из общего реестра.
func Run(name string, args ...any) (string, error) {
	return defaultRegistry.Run(name, args...)
}
