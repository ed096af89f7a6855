package wrapper

import (
	"errors"
	"fmt"
	"os"
)

// Channel — односторонний канал сообщений между процессами.
//
// Location передаётся дочернему процессу в аргументах; по нему
// процесс открывает свой конец канала.
type Channel interface {
	// Location возвращает адрес канала.
	Location() string

	// Write записывает сообщение целиком.
	Write(data []byte) error

	// Read читает сообщение целиком.
	Read() ([]byte, error)

	// Close освобождает ресурсы канала.
	Close() error
}

// FileChannel — канал на основе файла.
type FileChannel struct {
	path  string
	owned bool
}

// NewFileChannel создаёт канал по пути path.
// Файл удаляется при Close.
func NewFileChannel(path string) *FileChannel {
	return &FileChannel{path: path, owned: true}
}

// OpenFileChannel открывает канал, созданный другим процессом.
// Close не удаляет файл.
func OpenFileChannel(path string) *FileChannel {
	return &FileChannel{path: path}
}

// Location возвращает путь файла.
func (c *FileChannel) Location() string {
	return c.path
}

// Write записывает сообщение в файл.
func (c *FileChannel) Write(data []byte) error {
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write channel %s: %w", c.path, err)
	}
	return nil
}

// Read читает сообщение из файла.
func (c *FileChannel) Read() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read channel %s: %w", c.path, err)
	}
	return data, nil
}

// Close удаляет файл, если канал им владеет.
func (c *FileChannel) Close() error {
	if !c.owned {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove channel %s: %w", c.path, err)
	}
	return nil
}
