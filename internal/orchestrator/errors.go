package orchestrator

import "errors"

// Ошибки дерева задач.
var (
	// ErrInvalidVarName — переменная узла не найдена.
	ErrInvalidVarName = errors.New("invalid task holder variable name")

	// ErrInvalidStatus — неизвестный статус узла.
	ErrInvalidStatus = errors.New("invalid task holder status")

	// ErrCyclicHolder — добавление дочернего узла создало бы цикл.
	ErrCyclicHolder = errors.New("task holder cycle")

	// ErrInvalidHolder — сериализованный узел некорректен.
	ErrInvalidHolder = errors.New("invalid task holder")
)
