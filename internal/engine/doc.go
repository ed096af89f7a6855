// Package engine содержит язык шаблонов и отбор crawler'ов.
//
// Включает:
//   - template.go — разбор и разрешение шаблонов "{name}/(pad {frame} 4)"
//   - matcher.go  — предикат по типу и переменным crawler'а
//   - query.go    — Matcher + target/filter шаблоны для пачки crawler'ов
//
// Шаблоны разбираются при загрузке конфигурации: синтаксическая
// ошибка — это ошибка конфигурации. Ошибки разрешения (нет переменной,
// нет процедуры) возникают во время выполнения.
package engine
