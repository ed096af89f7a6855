package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ramgopal99/centipede/internal/engine"
	"github.com/ramgopal99/centipede/internal/orchestrator"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
)

// Имена переменных, которые загрузчик добавляет узлам верхнего уровня.
const (
	VarConfigPath = "configPath"
	VarConfigName = "configName"
)

// document — корень конфигурации.
type document struct {
	Scripts any            `json:"scripts,omitempty" yaml:"scripts,omitempty"`
	Vars    map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
	Tasks   []holderInfo   `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// holderInfo — описание одного узла.
type holderInfo struct {
	Include  string         `json:"include,omitempty" yaml:"include,omitempty"`
	Run      string         `json:"run,omitempty" yaml:"run,omitempty"`
	Target   string         `json:"target,omitempty" yaml:"target,omitempty"`
	Filter   string         `json:"filter,omitempty" yaml:"filter,omitempty"`
	Status   string         `json:"status,omitempty" yaml:"status,omitempty"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Vars     map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
	Tasks    []holderInfo   `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Loader накапливает узлы верхнего уровня из конфигураций.
//
// Каждый вызов Add* атомарен: при ошибке ни один узел
// из этой конфигурации не добавляется.
type Loader struct {
	logger  *slog.Logger
	holders []*orchestrator.TaskHolder
}

// New создаёт загрузчик. nil logger заменяется на slog.Default().
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// TaskHolders возвращает узлы верхнего уровня в порядке загрузки.
func (l *Loader) TaskHolders() []*orchestrator.TaskHolder {
	out := make([]*orchestrator.TaskHolder, len(l.holders))
	copy(out, l.holders)
	return out
}

// AddFromJSON загружает конфигурацию из JSON.
// configPath — каталог, от которого разрешаются include.
func (l *Loader) AddFromJSON(data []byte, configPath, configName string) error {
	return l.add(data, FormatJSON, configPath, configName, nil)
}

// AddFromYAML загружает конфигурацию из YAML.
func (l *Loader) AddFromYAML(data []byte, configPath, configName string) error {
	return l.add(data, FormatYAML, configPath, configName, nil)
}

// AddFromFile загружает файл конфигурации. Формат определяется
// по расширению: .json, .yaml или .yml.
func (l *Loader) AddFromFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %q", ErrInvalidFile, path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidFile, path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidFile, path, err)
	}

	return l.add(data, format, filepath.Dir(abs), filepath.Base(abs), []string{abs})
}

// AddFromDirectory загружает все файлы конфигураций каталога
// (*.json, *.yaml, *.yml) в алфавитном порядке. Подкаталоги
// не просматриваются.
func (l *Loader) AddFromDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrInvalidDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidDirectory, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		if err := l.AddFromFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) add(data []byte, format Format, configPath, configName string, stack []string) error {
	var doc document
	if err := decode(data, format, &doc); err != nil {
		return fmt.Errorf("%s: %w", configName, err)
	}
	if doc.Scripts != nil {
		return fmt.Errorf("%s: %w", configName, ErrUnsupportedScripts)
	}

	vars := normalizeMap(doc.Vars)
	if vars == nil {
		vars = make(map[string]any)
	}
	vars[VarConfigPath] = configPath
	vars[VarConfigName] = configName

	b := &builder{config: configName}
	holders := make([]*orchestrator.TaskHolder, 0, len(doc.Tasks))
	for i, info := range doc.Tasks {
		h, err := b.holder(info, configPath, fmt.Sprintf("tasks[%d]", i), vars, stack)
		if err != nil {
			return err
		}
		holders = append(holders, h)
	}

	l.holders = append(l.holders, holders...)
	l.logger.Debug("configuration loaded",
		"config", configName,
		"format", format,
		"holders", len(holders),
	)
	return nil
}

// builder строит узлы одной конфигурации.
type builder struct {
	config string
}

// holder строит узел и его поддерево. inherited — context-переменные,
// которые получает узел кроме собственных vars. stack — цепочка
// включённых файлов для обнаружения циклов.
func (b *builder) holder(info holderInfo, configPath, pos string, inherited map[string]any, stack []string) (*orchestrator.TaskHolder, error) {
	if info.Include != "" {
		return b.include(info, configPath, pos, inherited, stack)
	}

	if info.Run == "" {
		return nil, NewValidationError(b.config, pos, "run", fmt.Errorf("%w: missing task type", ErrUnexpectedContent))
	}

	t, err := task.Create(info.Run)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "run", err)
	}
	opts := normalizeMap(info.Options)
	for _, k := range values.SortedKeys(opts) {
		t.SetOption(k, opts[k])
	}
	meta := normalizeMap(info.Metadata)
	for _, k := range values.SortedKeys(meta) {
		t.SetMetadata(k, meta[k])
	}

	target, err := engine.NewTemplate(info.Target)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "target", err)
	}
	filter, err := engine.NewTemplate(info.Filter)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "filter", err)
	}

	h, err := orchestrator.New(t, target, filter)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "metadata", err)
	}

	if info.Status != "" {
		status, err := orchestrator.ParseStatus(info.Status)
		if err != nil {
			return nil, NewValidationError(b.config, pos, "status", err)
		}
		if err := h.SetStatus(status); err != nil {
			return nil, NewValidationError(b.config, pos, "status", err)
		}
	}

	for _, k := range values.SortedKeys(inherited) {
		h.AddVar(k, inherited[k], true)
	}
	own := normalizeMap(info.Vars)
	for _, k := range values.SortedKeys(own) {
		h.AddVar(k, own[k], true)
	}

	for i, childInfo := range info.Tasks {
		child, err := b.holder(childInfo, configPath, fmt.Sprintf("%s.tasks[%d]", pos, i), nil, stack)
		if err != nil {
			return nil, err
		}
		if err := h.AddSubTaskHolder(child); err != nil {
			return nil, NewValidationError(b.config, pos, "tasks", err)
		}
	}
	return h, nil
}

// include заменяет узел содержимым внешнего файла.
func (b *builder) include(info holderInfo, configPath, pos string, inherited map[string]any, stack []string) (*orchestrator.TaskHolder, error) {
	if info.Run != "" || len(info.Tasks) > 0 || info.Target != "" || info.Filter != "" ||
		info.Status != "" || info.Options != nil || info.Metadata != nil || info.Vars != nil {
		return nil, NewValidationError(b.config, pos, "include",
			fmt.Errorf("%w: include cannot be combined with other keys", ErrUnexpectedContent))
	}

	path := info.Include
	if !filepath.IsAbs(path) {
		path = filepath.Join(configPath, path)
	}
	path = filepath.Clean(path)

	if slices.Contains(stack, path) {
		return nil, NewValidationError(b.config, pos, "include", fmt.Errorf("%w: %s", ErrIncludeCycle, path))
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "include", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewValidationError(b.config, pos, "include", fmt.Errorf("%w: %v", ErrInvalidFile, err))
	}

	var included holderInfo
	if err := decode(data, format, &included); err != nil {
		return nil, NewValidationError(b.config, pos, "include", fmt.Errorf("%s: %w", path, err))
	}

	return b.holder(included, filepath.Dir(path), pos, inherited, append(slices.Clone(stack), path))
}
