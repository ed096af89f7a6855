package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ramgopal99/centipede/internal/engine"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
)

// Serialized — JSON-форма узла:
//
//	{
//	    "template": {"target": "{root}/{name}.exr", "filter": ""},
//	    "vars": {"root": "/out"},
//	    "status": "execute",
//	    "contextVarNames": ["root"],
//	    "task": {"type": "copy", "options": {}, "metadata": {}},
//	    "subTaskHolders": [...]
//	}
//
// Форма стабильна побайтно: ключи map сортируются, contextVarNames
// отсортированы.
type Serialized struct {
	Template        TemplatePair    `json:"template"`
	Vars            map[string]any  `json:"vars"`
	Status          Status          `json:"status"`
	ContextVarNames []string        `json:"contextVarNames"`
	Task            task.Serialized `json:"task"`
	SubTaskHolders  []Serialized    `json:"subTaskHolders"`
}

// TemplatePair — шаблоны target и filter узла.
type TemplatePair struct {
	Target string `json:"target"`
	Filter string `json:"filter"`
}

// ToSerializable возвращает структурную форму узла.
func (h *TaskHolder) ToSerializable(includeSubTaskHolders bool) Serialized {
	s := Serialized{
		Template: TemplatePair{
			Target: h.target.String(),
			Filter: h.filter.String(),
		},
		Vars:            values.CopyMap(h.vars),
		Status:          h.status,
		ContextVarNames: h.ContextVarNames(),
		Task:            h.task.ToSerializable(),
		SubTaskHolders:  []Serialized{},
	}
	if s.Task.Options == nil {
		s.Task.Options = map[string]any{}
	}
	if s.Task.Metadata == nil {
		s.Task.Metadata = map[string]any{}
	}

	if includeSubTaskHolders {
		for _, child := range h.subTaskHolders {
			s.SubTaskHolders = append(s.SubTaskHolders, child.ToSerializable(true))
		}
	}
	return s
}

// ToJSON сериализует узел (и, по желанию, поддерево).
func (h *TaskHolder) ToJSON(includeSubTaskHolders bool) ([]byte, error) {
	data, err := json.Marshal(h.ToSerializable(includeSubTaskHolders))
	if err != nil {
		return nil, fmt.Errorf("marshal task holder: %w", err)
	}
	return data, nil
}

// MarshalJSON сериализует узел вместе с поддеревом.
func (h *TaskHolder) MarshalJSON() ([]byte, error) {
	return h.ToJSON(true)
}

// FromJSON восстанавливает дерево из JSON.
//
// Задачи и wrapper'ы создаются через реестры, шаблоны разбираются
// заново. Результат не разделяет состояния с источником.
func FromJSON(data []byte) (*TaskHolder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var s Serialized
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHolder, err)
	}
	return FromSerialized(s)
}

// FromSerialized восстанавливает дерево из структурной формы.
func FromSerialized(s Serialized) (*TaskHolder, error) {
	t, err := task.FromSerialized(s.Task)
	if err != nil {
		return nil, err
	}

	target, err := engine.NewTemplate(s.Template.Target)
	if err != nil {
		return nil, err
	}
	filter, err := engine.NewTemplate(s.Template.Filter)
	if err != nil {
		return nil, err
	}

	h, err := New(t, target, filter)
	if err != nil {
		return nil, err
	}

	status := StatusExecute
	if s.Status != "" {
		if status, err = ParseStatus(string(s.Status)); err != nil {
			return nil, err
		}
	}
	h.status = status

	isContext := make(map[string]bool, len(s.ContextVarNames))
	for _, name := range s.ContextVarNames {
		if _, ok := s.Vars[name]; !ok {
			return nil, fmt.Errorf("%w: context variable %q has no value", ErrInvalidVarName, name)
		}
		isContext[name] = true
	}
	for _, name := range values.SortedKeys(s.Vars) {
		h.AddVar(name, s.Vars[name], isContext[name])
	}

	for i, child := range s.SubTaskHolders {
		sub, err := FromSerialized(child)
		if err != nil {
			return nil, fmt.Errorf("sub task holder %d: %w", i, err)
		}
		h.subTaskHolders = append(h.subTaskHolders, sub)
	}
	return h, nil
}

// Clone возвращает независимую копию узла через JSON.
func (h *TaskHolder) Clone(includeSubTaskHolders bool) (*TaskHolder, error) {
	data, err := h.ToJSON(includeSubTaskHolders)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}
