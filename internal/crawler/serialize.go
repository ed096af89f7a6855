package crawler

import (
	"encoding/json"
	"fmt"
)

// Serialized — структурная JSON-форма crawler'а.
//
// Используется при передаче crawler'ов в subprocess wrapper
// и обратно.
type Serialized struct {
	// Type — тип crawler'а (ключ в реестре типов).
	Type string `json:"type"`

	// Vars — переменные.
	Vars map[string]any `json:"vars"`

	// ContextVarNames — имена context-переменных (отсортированы).
	ContextVarNames []string `json:"contextVarNames"`

	// Tags — теги.
	Tags map[string]any `json:"tags"`
}

// Marshal сериализует crawler в JSON.
func Marshal(c Crawler) ([]byte, error) {
	b, err := json.Marshal(normalize(c.ToSerializable()))
	if err != nil {
		return nil, fmt.Errorf("marshal crawler %s: %w", c.Type(), err)
	}
	return b, nil
}

// Unmarshal создаёт crawler из JSON через реестр типов.
func Unmarshal(data []byte) (Crawler, error) {
	var s Serialized
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal crawler: %w", err)
	}
	return FromSerialized(s)
}

// MarshalList сериализует список crawler'ов в JSON-массив.
func MarshalList(crawlers []Crawler) ([]byte, error) {
	list := make([]Serialized, len(crawlers))
	for i, c := range crawlers {
		list[i] = normalize(c.ToSerializable())
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("marshal crawlers: %w", err)
	}
	return b, nil
}

// UnmarshalList восстанавливает список crawler'ов из JSON-массива.
// null и любое значение, кроме массива, — ErrInvalidList.
func UnmarshalList(data []byte) ([]Crawler, error) {
	var list *[]Serialized
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
	}
	if list == nil {
		return nil, fmt.Errorf("%w: got null", ErrInvalidList)
	}

	crawlers := make([]Crawler, 0, len(*list))
	for i, s := range *list {
		c, err := FromSerialized(s)
		if err != nil {
			return nil, fmt.Errorf("crawler %d: %w", i, err)
		}
		crawlers = append(crawlers, c)
	}
	return crawlers, nil
}

// FromSerialized создаёт crawler зарегистрированного типа и
// восстанавливает его состояние.
func FromSerialized(s Serialized) (Crawler, error) {
	c, err := Create(s.Type)
	if err != nil {
		return nil, err
	}
	if err := c.FromSerializable(s); err != nil {
		return nil, fmt.Errorf("restore crawler %s: %w", s.Type, err)
	}
	return c, nil
}

// normalize заменяет nil-коллекции пустыми, чтобы JSON был стабильным.
func normalize(s Serialized) Serialized {
	if s.Vars == nil {
		s.Vars = map[string]any{}
	}
	if s.ContextVarNames == nil {
		s.ContextVarNames = []string{}
	}
	if s.Tags == nil {
		s.Tags = map[string]any{}
	}
	return s
}
