package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/engine"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
	"github.com/ramgopal99/centipede/internal/wrapper"
)

// Ключи metadata задачи, выбирающие wrapper.
const (
	MetadataWrapperName    = "wrapper.name"
	MetadataWrapperOptions = "wrapper.options"
)

// TaskHolder — узел дерева задач.
//
// Связывает задачу, шаблоны target и filter, matcher (из metadata
// задачи), переменные узла, статус, wrapper и дочерние узлы.
//
// Узел владеет собственной копией задачи. При выполнении к задаче
// ничего не прикрепляется: каждый запуск работает с новым клоном.
type TaskHolder struct {
	task    *task.Task
	target  *engine.Template
	filter  *engine.Template
	matcher *engine.Matcher
	wrapper wrapper.Wrapper
	status  Status

	vars        map[string]any
	contextVars map[string]struct{}

	subTaskHolders []*TaskHolder
}

// New создаёт узел для задачи.
//
// Задача клонируется. Matcher строится из metadata match.types
// и match.vars, wrapper — из wrapper.name (по умолчанию "default")
// и wrapper.options. nil-шаблоны считаются пустыми.
func New(t *task.Task, target, filter *engine.Template) (*TaskHolder, error) {
	if target == nil {
		target = engine.MustTemplate("")
	}
	if filter == nil {
		filter = engine.MustTemplate("")
	}

	owned := t.Clone()
	meta := owned.AllMetadata()

	matcher, err := engine.MatcherFromMetadata(meta)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", owned.Type(), err)
	}

	w, err := newWrapper(meta)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", owned.Type(), err)
	}

	return &TaskHolder{
		task:        owned,
		target:      target,
		filter:      filter,
		matcher:     matcher,
		wrapper:     w,
		status:      StatusExecute,
		vars:        make(map[string]any),
		contextVars: make(map[string]struct{}),
	}, nil
}

func newWrapper(meta map[string]any) (wrapper.Wrapper, error) {
	name := values.GetString(meta, MetadataWrapperName)
	if name == "" {
		name = wrapper.NameDefault
	}

	w, err := wrapper.Create(name)
	if err != nil {
		return nil, err
	}

	opts, ok := meta[MetadataWrapperOptions]
	if !ok || opts == nil {
		return w, nil
	}
	m, ok := opts.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected object", values.ErrInvalidShape, MetadataWrapperOptions)
	}
	for _, k := range values.SortedKeys(m) {
		w.SetOption(k, m[k])
	}
	return w, nil
}

// Task возвращает задачу узла.
func (h *TaskHolder) Task() *task.Task {
	return h.task
}

// TargetTemplate возвращает шаблон целевого пути.
func (h *TaskHolder) TargetTemplate() *engine.Template {
	return h.target
}

// FilterTemplate возвращает шаблон фильтра.
func (h *TaskHolder) FilterTemplate() *engine.Template {
	return h.filter
}

// Matcher возвращает matcher узла.
func (h *TaskHolder) Matcher() *engine.Matcher {
	return h.matcher
}

// Wrapper возвращает wrapper узла.
func (h *TaskHolder) Wrapper() wrapper.Wrapper {
	return h.wrapper
}

// Query возвращает query узла (matcher + target + filter).
func (h *TaskHolder) Query() *engine.Query {
	return engine.NewQuery(h.matcher, h.target, h.filter)
}

// Status возвращает статус узла.
func (h *TaskHolder) Status() Status {
	return h.status
}

// SetStatus устанавливает статус узла.
func (h *TaskHolder) SetStatus(s Status) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	h.status = s
	return nil
}

// AddVar добавляет переменную узла.
//
// Context-переменные переносятся на все crawler'ы, проходящие через
// узел и ниже. Остальные видны только шаблонам этого узла.
func (h *TaskHolder) AddVar(name string, value any, isContext bool) {
	if isContext {
		h.contextVars[name] = struct{}{}
	} else {
		delete(h.contextVars, name)
	}
	h.vars[name] = values.Copy(value)
}

// Var возвращает значение переменной узла.
func (h *TaskHolder) Var(name string) (any, error) {
	v, ok := h.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVarName, name)
	}
	return v, nil
}

// VarNames возвращает отсортированные имена переменных.
func (h *TaskHolder) VarNames() []string {
	return values.SortedKeys(h.vars)
}

// ContextVarNames возвращает отсортированные имена context-переменных.
func (h *TaskHolder) ContextVarNames() []string {
	names := make([]string, 0, len(h.contextVars))
	for name := range h.contextVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsContextVar проверяет, помечена ли переменная как context.
func (h *TaskHolder) IsContextVar(name string) bool {
	_, ok := h.contextVars[name]
	return ok
}

// AddSubTaskHolder добавляет дочерний узел в конец списка.
func (h *TaskHolder) AddSubTaskHolder(child *TaskHolder) error {
	if child == nil {
		return fmt.Errorf("%w: nil sub task holder", ErrInvalidHolder)
	}
	if child == h || child.contains(h) {
		return fmt.Errorf("%w: %s", ErrCyclicHolder, child.task.Type())
	}
	h.subTaskHolders = append(h.subTaskHolders, child)
	return nil
}

// SubTaskHolders возвращает дочерние узлы в объявленном порядке.
func (h *TaskHolder) SubTaskHolders() []*TaskHolder {
	out := make([]*TaskHolder, len(h.subTaskHolders))
	copy(out, h.subTaskHolders)
	return out
}

// ClearSubTaskHolders удаляет все дочерние узлы.
func (h *TaskHolder) ClearSubTaskHolders() {
	h.subTaskHolders = nil
}

// Run выполняет дерево с этим узлом в корне последовательно.
// Ошибка в любом узле отменяет весь запуск.
func (h *TaskHolder) Run(ctx context.Context, crawlers []crawler.Crawler) ([]crawler.Crawler, error) {
	return (&Runner{}).Run(ctx, h, crawlers)
}

// scope возвращает копию переменных узла для шаблонов.
func (h *TaskHolder) scope() map[string]any {
	return values.CopyMap(h.vars)
}

func (h *TaskHolder) contains(target *TaskHolder) bool {
	for _, child := range h.subTaskHolders {
		if child == target || child.contains(target) {
			return true
		}
	}
	return false
}
