package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Стандартные типы crawler'ов.
const (
	TypeGeneric   = "generic"
	TypeFile      = "file"
	TypeDirectory = "directory"
)

// Категории медиа-файлов.
const (
	CategoryImage = "image"
	CategoryVideo = "video"
	CategoryLut   = "lut"
)

// Значения переменной imageType.
const (
	ImageTypeSingle   = "single"
	ImageTypeSequence = "sequence"
)

// extensionCategories сопоставляет расширение файла с категорией.
// Каждое расширение из таблицы становится отдельным типом crawler'а.
var extensionCategories = map[string]string{
	"exr":  CategoryImage,
	"dpx":  CategoryImage,
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"png":  CategoryImage,
	"tif":  CategoryImage,
	"tiff": CategoryImage,
	"tga":  CategoryImage,
	"hdr":  CategoryImage,
	"mov":  CategoryVideo,
	"mp4":  CategoryVideo,
	"mxf":  CategoryVideo,
	"avi":  CategoryVideo,
	"mkv":  CategoryVideo,
	"cdl":  CategoryLut,
	"cc":   CategoryLut,
	"ccc":  CategoryLut,
	"cube": CategoryLut,
	"3dl":  CategoryLut,
	"csp":  CategoryLut,
}

// sequencePattern выделяет номер кадра: "plate.1001" → ("plate", "1001").
var sequencePattern = regexp.MustCompile(`^(.+)\.(\d+)$`)

// NewPath создаёт crawler для существующего пути файловой системы.
//
// Устанавливаемые переменные:
//   - filePath, baseName, name, ext, type, category
//   - imageType ("single" или "sequence") для изображений
//   - frame и padding для кадров последовательности
//
// Тип crawler'а — расширение из известной таблицы, иначе
// "file" или "directory". Для медиа-файлов ставится тег
// с именем категории.
func NewPath(path string) (Crawler, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}

	baseName := filepath.Base(abs)
	if info.IsDir() {
		c := New(TypeDirectory)
		c.SetVar("filePath", abs, false)
		c.SetVar("baseName", baseName, false)
		c.SetVar("name", baseName, false)
		c.SetVar("ext", "", false)
		c.SetVar("type", TypeDirectory, false)
		c.SetVar("category", "", false)
		return c, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(baseName), "."))
	name := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	typ := TypeFile
	category := Category(ext)
	if category != "" {
		typ = ext
	}

	c := New(typ)
	c.SetVar("filePath", abs, false)
	c.SetVar("baseName", baseName, false)
	c.SetVar("ext", ext, false)
	c.SetVar("type", typ, false)
	c.SetVar("category", category, false)

	if category == CategoryImage {
		if m := sequencePattern.FindStringSubmatch(name); m != nil {
			frame, err := strconv.Atoi(m[2])
			if err == nil {
				name = m[1]
				c.SetVar("frame", frame, false)
				c.SetVar("padding", len(m[2]), false)
				c.SetVar("imageType", ImageTypeSequence, false)
			}
		}
		if !c.HasVar("imageType") {
			c.SetVar("imageType", ImageTypeSingle, false)
		}
	}
	c.SetVar("name", name, false)

	if category != "" {
		c.SetTag(category, baseName)
	}
	return c, nil
}

// Category возвращает категорию расширения ("" для неизвестных).
func Category(ext string) string {
	return extensionCategories[strings.ToLower(strings.TrimPrefix(ext, "."))]
}
