package crawler

import (
	"fmt"
	"sort"
	"sync"
)

// Factory создаёт пустой crawler.
type Factory func() Crawler

// Registry — таблица типов crawler'ов (тип → конструктор).
//
// Используется для восстановления crawler'ов из сериализованной формы.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register регистрирует конструктор для типа.
func (r *Registry) Register(typ string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = factory
}

// Create создаёт crawler по типу.
// Возвращает ErrUnknownType, если тип не зарегистрирован.
func (r *Registry) Create(typ string) (Crawler, error) {
	r.mu.RLock()
	factory, exists := r.factories[typ]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	return factory(), nil
}

// Types возвращает отсортированный список зарегистрированных типов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

var defaultRegistry = NewRegistry()

// Default возвращает общий для процесса реестр типов.
func Default() *Registry {
	return defaultRegistry
}

// Register регистрирует тип в общем реестре.
func Register(typ string, factory Factory) {
	defaultRegistry.Register(typ, factory)
}

// Create создаёт crawler из общего реестра.
func Create(typ string) (Crawler, error) {
	return defaultRegistry.Create(typ)
}

// RegisterType регистрирует тип, реализованный через Base.
func RegisterType(typ string) {
	Register(typ, func() Crawler { return New(typ) })
}

// RegisterDefaults регистрирует стандартные типы:
// generic, file, directory и все типы, которые выдаёт NewPath.
func RegisterDefaults() {
	RegisterType(TypeGeneric)
	RegisterType(TypeFile)
	RegisterType(TypeDirectory)
	for ext := range extensionCategories {
		RegisterType(ext)
	}
}
