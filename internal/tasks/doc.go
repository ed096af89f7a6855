// Package tasks содержит встроенные задачи.
//
// # Обзор
//
// Каждая задача реализует task.Performer и регистрируется по имени
// через RegisterDefaults (вызывается в cmd/centipede при старте):
//
//	tasks.RegisterDefaults()
//	t, err := task.Create("copy")
//
// # Типы задач
//
// ## copy (copy.go)
//
// Копирует файл crawler'а (переменная filePath) в целевой путь
// вложения. Результат — crawler.NewPath по пути копии.
//
// ## remove (remove.go)
//
// Удаляет файл crawler'а и передаёт crawler дальше.
//
// ## checksum (checksum.go)
//
// Сравнивает SHA-256 файла crawler'а и файла по целевому пути.
// Расхождение — ErrChecksumMismatch.
//
// ## setVars (setvars.go)
//
// Устанавливает переменные на копии crawler'ов:
//
//	{
//	    "vars": {"stage": "plates", "label": "{name}_v(pad {version} 3)"},
//	    "pathVar": "outputPath"
//	}
//
// # Обработка ошибок
//
// Ошибка на любом вложении отменяет задачу целиком: результаты
// предыдущих вложений не возвращаются. Повторных попыток нет.
package tasks
