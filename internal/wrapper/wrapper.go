package wrapper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
)

// Ошибки wrapper'ов.
var (
	// ErrUnknownWrapper — wrapper не зарегистрирован.
	ErrUnknownWrapper = errors.New("unknown task wrapper")

	// ErrInvalidOptionName — опция wrapper'а не найдена.
	ErrInvalidOptionName = errors.New("invalid wrapper option name")

	// ErrSubprocessExecution — дочерний процесс завершился с ненулевым кодом.
	ErrSubprocessExecution = errors.New("subprocess execution failed")

	// ErrMalformedResponse — ответ дочернего процесса отсутствует или некорректен.
	ErrMalformedResponse = errors.New("malformed subprocess response")

	// ErrSubprocessTimeout — дочерний процесс превысил таймаут и был завершён.
	ErrSubprocessTimeout = errors.New("subprocess timeout")
)

// Стандартные имена wrapper'ов.
const (
	NameDefault    = "default"
	NameSubprocess = "subprocess"
)

// Wrapper — стратегия выполнения задачи.
//
// Любой wrapper взаимозаменяем: задача и дерево задач не зависят
// от того, где выполняется процедура задачи.
type Wrapper interface {
	// Name возвращает имя wrapper'а в реестре.
	Name() string

	// Option возвращает значение опции или ErrInvalidOptionName.
	Option(name string) (any, error)

	// SetOption устанавливает опцию.
	SetOption(name string, value any)

	// HasOption проверяет наличие опции.
	HasOption(name string) bool

	// OptionNames возвращает отсортированные имена опций.
	OptionNames() []string

	// Run выполняет задачу и возвращает её результаты.
	Run(ctx context.Context, t *task.Task) ([]crawler.Crawler, error)
}

// Options — набор опций wrapper'а. Встраивается в реализации.
type Options struct {
	name   string
	values map[string]any
}

func newOptions(name string) Options {
	return Options{name: name, values: make(map[string]any)}
}

// Name возвращает имя wrapper'а.
func (o *Options) Name() string {
	return o.name
}

// Option возвращает значение опции.
func (o *Options) Option(name string) (any, error) {
	v, ok := o.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptionName, name)
	}
	return v, nil
}

// SetOption устанавливает опцию.
func (o *Options) SetOption(name string, value any) {
	o.values[name] = value
}

// HasOption проверяет наличие опции.
func (o *Options) HasOption(name string) bool {
	_, ok := o.values[name]
	return ok
}

// OptionNames возвращает отсортированные имена опций.
func (o *Options) OptionNames() []string {
	return values.SortedKeys(o.values)
}

// Factory создаёт wrapper.
type Factory func() Wrapper

// Registry — реестр wrapper'ов по имени.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register регистрирует wrapper.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create создаёт wrapper по имени.
// Возвращает ErrUnknownWrapper, если имя не зарегистрировано.
func (r *Registry) Create(name string) (Wrapper, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWrapper, name)
	}
	return factory(), nil
}

// Names возвращает отсортированный список имён.
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

// Default возвращает общий для процесса реестр wrapper'ов.
func Default() *Registry {
	return defaultRegistry
}

// Register регистрирует wrapper в общем реестре.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}

// Create создаёт wrapper из общего реестра.
func Create(name string) (Wrapper, error) {
	return defaultRegistry.Create(name)
}

// RegisterDefaults регистрирует default и subprocess.
// subprocessTimeout — таймаут subprocess по умолчанию (0 — без таймаута);
// опция timeout конкретного wrapper'а его переопределяет.
func RegisterDefaults(subprocessTimeout time.Duration) {
	Register(NameDefault, func() Wrapper { return NewDefaultWrapper() })
	Register(NameSubprocess, func() Wrapper {
		w := NewSubprocessWrapper()
		if subprocessTimeout > 0 {
			w.SetOption(OptionTimeout, subprocessTimeout.Seconds())
		}
		return w
	})
}
