package tasks

import (
	"context"
	"fmt"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/engine"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
)

const (
	// TaskTypeSetVars — установка переменных на crawler'ы.
	TaskTypeSetVars = "setVars"

	// Ключи опций.
	optionVars    = "vars"
	optionPathVar = "pathVar"
)

// SetVarsTask копирует каждый crawler и устанавливает на копию
// переменные из опции vars. Строковые значения разрешаются как
// шаблоны против переменных crawler'а.
//
// Опции:
//
//	{
//	    "vars": {
//	        "stage": "plates",
//	        "label": "{name}_(pad {frame} 4)"
//	    },
//	    "pathVar": "outputPath"
//	}
//
// Если задана pathVar и у вложения есть целевой путь, путь
// записывается в переменную с этим именем.
type SetVarsTask struct{}

// NewSetVarsTask создаёт новый SetVarsTask.
func NewSetVarsTask() *SetVarsTask {
	return &SetVarsTask{}
}

// DefaultOptions возвращает опции по умолчанию.
func (p *SetVarsTask) DefaultOptions() map[string]any {
	return map[string]any{
		optionVars: map[string]any{},
	}
}

// Perform устанавливает переменные.
func (p *SetVarsTask) Perform(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	options := t.Options()

	vars, ok := options[optionVars].(map[string]any)
	if !ok && options[optionVars] != nil {
		return nil, fmt.Errorf("%w: %s: expected object", values.ErrInvalidShape, optionVars)
	}
	pathVar := values.GetString(options, optionPathVar)

	result := make([]crawler.Crawler, 0, len(t.Attachments()))
	for _, a := range t.Attachments() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		scope := engine.Scope(a.Crawler, nil)
		c := a.Crawler.Clone()
		for _, name := range values.SortedKeys(vars) {
			resolved, err := engine.ResolveValue(vars[name], scope)
			if err != nil {
				return nil, fmt.Errorf("var %s: %w", name, err)
			}
			c.SetVar(name, resolved, crawler.IsContextVar(c, name))
		}
		if pathVar != "" && a.FilePath != "" {
			c.SetVar(pathVar, a.FilePath, crawler.IsContextVar(c, pathVar))
		}
		result = append(result, c)
	}
	return result, nil
}
