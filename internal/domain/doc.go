// Package domain содержит записи истории запусков.
//
// Run описывает один вызов `centipede run`: какие конфигурации
// и пути были на входе, чем закончилось выполнение и что получилось.
// Записи сохраняет пакет repo.
package domain
