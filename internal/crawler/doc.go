// Package crawler описывает crawler — единицу данных, которая проходит
// через дерево задач.
//
// Crawler несёт тип, переменные и теги. Часть переменных помечается
// как context: такие переменные наследуются результатами задач.
//
// Пакет содержит:
//   - интерфейс Crawler и стандартную реализацию Base
//   - реестр типов для восстановления crawler'ов из JSON
//   - сериализованную форму (Serialized) и функции Marshal/Unmarshal
//   - NewPath — crawler для пути файловой системы
//
// Реестр типов заполняется явно при старте процесса через RegisterDefaults.
package crawler
