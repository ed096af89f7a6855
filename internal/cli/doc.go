// Package cli реализует команды centipede.
//
// # Команды
//
//   - run CONFIG... --path P...: загрузить конфигурации и выполнить
//     деревья задач над crawler'ами путей
//   - history: последние записанные запуски (run --record)
//   - inspect PATH...: crawler, который строится для пути
//   - resolve TEMPLATE [NAME=VALUE...]: разрешить шаблон
//   - procedures, eval NAME ARG...: процедуры выражений
//   - tasks: зарегистрированные задачи и wrapper'ы
//   - bootstrap REQUEST RESPONSE: скрытая точка входа дочернего
//     процесса subprocess wrapper'а
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) по умолчанию
//   - JSON с флагом --json
//
// Данные выводятся в stdout, сообщения и логи в stderr.
// Это позволяет использовать pipe: centipede run shots.json -p a.exr --json | jq .
//
// Каждая команда создаётся фабричной функцией (NewRunCmd и т.д.),
// принимающей cfgFn и outputFn: замыкания для ленивого создания
// Config и Output после парсинга PersistentFlags.
package cli
