// Package config собирает настройки процесса из переменных окружения.
//
// Перед чтением окружения загружаются .env-файлы (godotenv):
//   - $ENV_FILE, если задан (остальные файлы не читаются)
//   - .env.local
//   - .env
//
// Уже заданные переменные окружения файлами не перезаписываются.
//
// Переменные:
//
//	LOG_LEVEL                     DEBUG, INFO, WARN, ERROR (INFO)
//	LOG_FORMAT                    json или text (json)
//	DB_URL                        строка подключения к PostgreSQL для истории запусков
//	METRICS_ADDR                  адрес /metrics, пусто — не поднимать
//	CENTIPEDE_SUBPROCESS_TIMEOUT  таймаут subprocess wrapper'а: "90s" или секунды (0 — без таймаута)
//	CENTIPEDE_PARALLELISM         число одновременно выполняемых соседних узлов (1)
package config
