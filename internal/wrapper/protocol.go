package wrapper

import (
	"fmt"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
)

// Request — запрос к дочернему процессу.
//
//	{
//	    "type": "copy",
//	    "options": {...},
//	    "metadata": {...},
//	    "attachments": [{"crawler": {...}, "filePath": "/out/a.exr"}, ...]
//	}
//
// Ответ — JSON-массив сериализованных crawler'ов.
type Request struct {
	Type        string              `json:"type"`
	Options     map[string]any      `json:"options"`
	Metadata    map[string]any      `json:"metadata"`
	Attachments []RequestAttachment `json:"attachments"`
}

// RequestAttachment — вложение задачи в запросе.
// FilePath == nil — вложение без пути.
type RequestAttachment struct {
	Crawler  crawler.Serialized `json:"crawler"`
	FilePath *string            `json:"filePath"`
}

// NewRequest строит запрос из задачи и её вложений.
func NewRequest(t *task.Task) Request {
	s := t.ToSerializable()
	req := Request{
		Type:        s.Type,
		Options:     s.Options,
		Metadata:    s.Metadata,
		Attachments: make([]RequestAttachment, 0, len(t.Attachments())),
	}
	if req.Options == nil {
		req.Options = map[string]any{}
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}

	for _, a := range t.Attachments() {
		att := RequestAttachment{Crawler: a.Crawler.ToSerializable()}
		if a.FilePath != "" {
			path := a.FilePath
			att.FilePath = &path
		}
		req.Attachments = append(req.Attachments, att)
	}
	return req
}

// Task восстанавливает задачу с вложениями через реестры задач
// и типов crawler'ов.
func (r Request) Task() (*task.Task, error) {
	t, err := task.FromSerialized(task.Serialized{
		Type:     r.Type,
		Options:  r.Options,
		Metadata: r.Metadata,
	})
	if err != nil {
		return nil, err
	}

	for i, a := range r.Attachments {
		c, err := crawler.FromSerialized(a.Crawler)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		var path string
		if a.FilePath != nil {
			path = *a.FilePath
		}
		t.Add(c, path)
	}
	return t, nil
}
