// Package repo хранит историю запусков в PostgreSQL (pgx).
//
// Таблица centipede_runs создаётся EnsureSchema. Запись создаётся
// перед выполнением деревьев и обновляется после него.
package repo
