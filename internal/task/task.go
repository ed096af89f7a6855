package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/values"
)

// Ошибки задач.
var (
	// ErrUnknownTask — тип задачи не зарегистрирован.
	ErrUnknownTask = errors.New("unknown task")

	// ErrMissingOption — обязательная опция не задана.
	ErrMissingOption = errors.New("missing required option")

	// ErrInvalidOptionName — опция не найдена.
	ErrInvalidOptionName = errors.New("invalid option name")

	// ErrInvalidMetadataName — ключ metadata не найден.
	ErrInvalidMetadataName = errors.New("invalid metadata name")

	// ErrInvalidCrawler — crawler не прикреплён к задаче.
	ErrInvalidCrawler = errors.New("crawler is not attached to task")
)

// Performer — рабочая процедура задачи.
//
// Получает задачу целиком (вложения, опции, metadata) и возвращает
// результаты. Для каждого вложения процедура либо передаёт crawler
// дальше, либо возвращает изменённую копию, либо завершается ошибкой.
// Ошибка отменяет весь вызов: частичных результатов нет.
//
// Performer не хранит состояния между вызовами: один экземпляр
// разделяется задачей и её клонами.
type Performer interface {
	Perform(ctx context.Context, t *Task) ([]crawler.Crawler, error)
}

// PerformerFunc — адаптер функции к Performer.
type PerformerFunc func(ctx context.Context, t *Task) ([]crawler.Crawler, error)

// Perform вызывает f(ctx, t).
func (f PerformerFunc) Perform(ctx context.Context, t *Task) ([]crawler.Crawler, error) {
	return f(ctx, t)
}

// Attachment — crawler, прикреплённый к задаче, и его целевой путь.
// Пустой FilePath — без пути.
type Attachment struct {
	Crawler  crawler.Crawler
	FilePath string
}

// Task — единица работы.
//
// Хранит тип (имя в реестре), упорядоченный список вложений,
// опции и metadata. Порядок вложений — порядок обработки.
type Task struct {
	typ         string
	performer   Performer
	options     map[string]any
	metadata    map[string]any
	attachments []Attachment
}

// New создаёт задачу с указанным типом и процедурой.
// Обычно задачи создаются через Create по имени из реестра.
func New(typ string, p Performer) *Task {
	return &Task{
		typ:       typ,
		performer: p,
		options:   make(map[string]any),
		metadata:  make(map[string]any),
	}
}

// Type возвращает имя задачи в реестре.
func (t *Task) Type() string {
	return t.typ
}

// Option возвращает значение опции.
func (t *Task) Option(name string) (any, error) {
	v, ok := t.options[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptionName, name)
	}
	return v, nil
}

// RequireOption возвращает значение обязательной опции
// или ErrMissingOption.
func (t *Task) RequireOption(name string) (any, error) {
	v, ok := t.options[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: task %s: %s", ErrMissingOption, t.typ, name)
	}
	return v, nil
}

// SetOption устанавливает опцию.
func (t *Task) SetOption(name string, value any) {
	t.options[name] = value
}

// HasOption проверяет наличие опции.
func (t *Task) HasOption(name string) bool {
	_, ok := t.options[name]
	return ok
}

// OptionNames возвращает отсортированные имена опций.
func (t *Task) OptionNames() []string {
	return values.SortedKeys(t.options)
}

// Options возвращает копию опций.
func (t *Task) Options() map[string]any {
	return values.CopyMap(t.options)
}

// Metadata возвращает значение metadata.
func (t *Task) Metadata(name string) (any, error) {
	v, ok := t.metadata[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetadataName, name)
	}
	return v, nil
}

// SetMetadata устанавливает значение metadata.
func (t *Task) SetMetadata(name string, value any) {
	t.metadata[name] = value
}

// HasMetadata проверяет наличие ключа metadata.
func (t *Task) HasMetadata(name string) bool {
	_, ok := t.metadata[name]
	return ok
}

// MetadataNames возвращает отсортированные ключи metadata.
func (t *Task) MetadataNames() []string {
	return values.SortedKeys(t.metadata)
}

// AllMetadata возвращает копию metadata.
func (t *Task) AllMetadata() map[string]any {
	return values.CopyMap(t.metadata)
}

// Add прикрепляет crawler к задаче. Matcher здесь не проверяется:
// отбор выполняется до вызова Add.
func (t *Task) Add(c crawler.Crawler, filePath string) {
	t.attachments = append(t.attachments, Attachment{Crawler: c, FilePath: filePath})
}

// Attachments возвращает вложения в порядке добавления.
func (t *Task) Attachments() []Attachment {
	out := make([]Attachment, len(t.attachments))
	copy(out, t.attachments)
	return out
}

// Crawlers возвращает прикреплённые crawler'ы в порядке добавления.
func (t *Task) Crawlers() []crawler.Crawler {
	out := make([]crawler.Crawler, len(t.attachments))
	for i, a := range t.attachments {
		out[i] = a.Crawler
	}
	return out
}

// FilePath возвращает целевой путь прикреплённого crawler'а.
func (t *Task) FilePath(c crawler.Crawler) (string, error) {
	for _, a := range t.attachments {
		if a.Crawler == c {
			return a.FilePath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidCrawler, t.typ)
}

// Output выполняет процедуру задачи один раз и возвращает все результаты.
//
// Context-переменные вложений переносятся на каждый результат,
// у которого такой context-переменной ещё нет. Собственные значения
// результата не перезаписываются.
// При ошибке возвращается nil: частичных результатов нет.
func (t *Task) Output(ctx context.Context) ([]crawler.Crawler, error) {
	if t.performer == nil {
		return nil, fmt.Errorf("%w: %s has no performer", ErrUnknownTask, t.typ)
	}

	produced, err := t.performer.Perform(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.typ, err)
	}

	contextVars := t.contextVars()
	result := make([]crawler.Crawler, 0, len(produced))
	for _, c := range produced {
		for _, name := range values.SortedKeys(contextVars) {
			if crawler.IsContextVar(c, name) {
				continue
			}
			c.SetVar(name, values.Copy(contextVars[name]), true)
		}
		result = append(result, c)
	}
	return result, nil
}

// contextVars собирает context-переменные всех вложений.
// При совпадении имён побеждает более позднее вложение; это значение
// получают только результаты без собственной context-переменной.
func (t *Task) contextVars() map[string]any {
	vars := make(map[string]any)
	for _, a := range t.attachments {
		for _, name := range a.Crawler.ContextVarNames() {
			v, err := a.Crawler.Var(name)
			if err != nil {
				continue
			}
			vars[name] = v
		}
	}
	return vars
}

// Clone возвращает независимую копию задачи с тем же типом,
// опциями и metadata, но без вложений.
func (t *Task) Clone() *Task {
	return &Task{
		typ:       t.typ,
		performer: t.performer,
		options:   values.CopyMap(t.options),
		metadata:  values.CopyMap(t.metadata),
	}
}

// Serialized — JSON-форма задачи.
type Serialized struct {
	Type     string         `json:"type"`
	Options  map[string]any `json:"options"`
	Metadata map[string]any `json:"metadata"`
}

// ToSerializable возвращает структурную форму задачи (без вложений).
func (t *Task) ToSerializable() Serialized {
	return Serialized{
		Type:     t.typ,
		Options:  values.CopyMap(t.options),
		Metadata: values.CopyMap(t.metadata),
	}
}

// FromSerializable заменяет опции и metadata задачи.
func (t *Task) FromSerializable(s Serialized) {
	t.options = values.CopyMap(s.Options)
	if t.options == nil {
		t.options = make(map[string]any)
	}
	t.metadata = values.CopyMap(s.Metadata)
	if t.metadata == nil {
		t.metadata = make(map[string]any)
	}
}

// MarshalJSON сериализует задачу.
func (t *Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToSerializable())
}

// FromSerialized создаёт задачу зарегистрированного типа
// и восстанавливает её опции и metadata.
func FromSerialized(s Serialized) (*Task, error) {
	t, err := Create(s.Type)
	if err != nil {
		return nil, err
	}
	t.FromSerializable(s)
	return t, nil
}
