// Package wrapper содержит стратегии выполнения задач.
//
// Включает:
//   - wrapper.go    — интерфейс Wrapper, опции, реестр
//   - default.go    — выполнение в текущем процессе
//   - subprocess.go — выполнение в дочернем процессе
//   - protocol.go   — формат запроса к дочернему процессу
//   - channel.go    — канал сообщений (файловая реализация)
//   - bootstrap.go  — обработка запроса в дочернем процессе
//
// Subprocess wrapper запускает "centipede bootstrap <request> <response>"
// (или другой исполняемый файл из опции binary) и ждёт завершения.
// Это единственная блокирующая операция при выполнении дерева задач.
// Повторных попыток нет: ошибка дочернего процесса возвращается
// вызывающему как есть.
package wrapper
