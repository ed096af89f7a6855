package task

import (
	"fmt"
	"sort"
	"sync"
)

// Factory создаёт процедуру задачи.
type Factory func() Performer

// Defaulter — необязательный интерфейс Performer'а:
// опции по умолчанию для новой задачи.
type Defaulter interface {
	DefaultOptions() map[string]any
}

// Registry — реестр типов задач.
//
// Заполняется при старте процесса до загрузки конфигураций.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register регистрирует тип задачи.
// Если тип с таким именем уже существует, он будет перезаписан.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create создаёт задачу по имени.
// Возвращает ErrUnknownTask, если имя не зарегистрировано.
func (r *Registry) Create(name string) (*Task, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	p := factory()
	t := New(name, p)
	if d, ok := p.(Defaulter); ok {
		for k, v := range d.DefaultOptions() {
			t.SetOption(k, v)
		}
	}
	return t, nil
}

// Has проверяет, зарегистрирован ли тип.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Names возвращает отсортированный список типов задач.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default возвращает общий для процесса реестр задач.
func Default() *Registry {
	return defaultRegistry
}

// Register регистрирует тип задачи в общем реестре.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}

// Create создаёт задачу из общего реестра.
func Create(name string) (*Task, error) {
	return defaultRegistry.Create(name)
}

// Has проверяет наличие типа в общем реестре.
func Has(name string) bool {
	return defaultRegistry.Has(name)
}
