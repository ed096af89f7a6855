// Package orchestrator содержит дерево задач и его выполнение.
//
// TaskHolder — узел дерева: задача, шаблоны target/filter, matcher,
// переменные, статус (execute, bypass, ignore), wrapper и дочерние
// узлы. Runner выполняет дерево рекурсивно, в глубину, в объявленном
// порядке дочерних узлов.
//
// Дерево сериализуется в JSON (ToJSON/FromJSON); клонирование всегда
// идёт через сериализацию, поэтому копия не разделяет состояния
// с оригиналом.
//
// Файлы пакета:
//   - status.go    — Status и ParseStatus
//   - holder.go    — TaskHolder
//   - runner.go    — Runner, рекурсивное выполнение
//   - serialize.go — JSON-форма дерева
package orchestrator
