// Package values содержит помощники для работы с JSON-подобными значениями:
// переменными crawler'ов, опциями и metadata задач.
package values

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidShape — значение не соответствует ожидаемой форме.
var ErrInvalidShape = errors.New("invalid value shape")

// String возвращает каноническое строковое представление значения.
//
// Используется при подстановке {name} в шаблонах и при сравнении
// значений переменных в matcher'е:
//   - строки без изменений
//   - целые числа в десятичной записи
//   - float без лишнего ".0" (4.0 → "4")
//   - nil → ""
//   - остальное — JSON
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy интерпретирует результат filter-шаблона.
// Ложью считаются "", "0" и "false" (без учёта регистра).
func Truthy(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return false
	}
	return !strings.EqualFold(s, "false")
}

// GetString извлекает строковое значение.
func GetString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetBool извлекает булево значение.
func GetBool(m map[string]any, key string, defaultVal bool) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetStringSlice извлекает список строк.
// Отсутствующий ключ — пустой список без ошибки.
func GetStringSlice(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	return StringSlice(v)
}

// StringSlice приводит значение к списку строк.
// Скаляр превращается в список из одного элемента.
func StringSlice(v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			switch item.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("%w: nested value in list", ErrInvalidShape)
			}
			out = append(out, String(item))
		}
		return out, nil
	case map[string]any:
		return nil, fmt.Errorf("%w: expected list, got object", ErrInvalidShape)
	default:
		return []string{String(s)}, nil
	}
}

// GetStringMap извлекает map[string]string.
func GetStringMap(m map[string]any, key string) (map[string]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch mm := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(mm))
		for k, val := range mm {
			out[k] = val
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(mm))
		for k, val := range mm {
			out[k] = String(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected object, got %T", ErrInvalidShape, key, v)
	}
}

// GetStringSliceMap извлекает map[string][]string (например, match.vars).
func GetStringSliceMap(m map[string]any, key string) (map[string][]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}

	var src map[string]any
	switch mm := v.(type) {
	case map[string][]string:
		out := make(map[string][]string, len(mm))
		for k, vals := range mm {
			out[k] = append([]string(nil), vals...)
		}
		return out, nil
	case map[string]any:
		src = mm
	default:
		return nil, fmt.Errorf("%w: %s: expected object, got %T", ErrInvalidShape, key, v)
	}

	out := make(map[string][]string, len(src))
	for k, val := range src {
		list, err := StringSlice(val)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", key, k, err)
		}
		out[k] = list
	}
	return out, nil
}

// cloneJSON возвращает глубокую копию значения через JSON.
func cloneJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("clone value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("clone value: %w", err)
	}
	return out, nil
}

// Copy возвращает структурную глубокую копию значения.
//
// Исходные типы скаляров сохраняются (int остаётся int).
// Неизвестные составные типы копируются через JSON; если это невозможно,
// значение возвращается как есть.
func Copy(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint64, float32, float64, json.Number:
		return val
	case map[string]any:
		return CopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Copy(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	case map[string][]string:
		out := make(map[string][]string, len(val))
		for k, item := range val {
			out[k] = append([]string(nil), item...)
		}
		return out
	default:
		if c, err := cloneJSON(val); err == nil {
			return c
		}
		return val
	}
}

// CopyMap возвращает структурную глубокую копию map.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Copy(v)
	}
	return out
}

// SortedKeys возвращает ключи map в отсортированном порядке.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
