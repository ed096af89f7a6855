// Package expression содержит реестр процедур — небольших функций над
// значениями, доступных в шаблонах ((pad {frame} 4)) и отдельно через Run.
//
// Реестр заполняется явно при старте процесса:
//
//	expression.RegisterStandard(expression.Default())
//
// После этого процедуры вызываются по имени:
//
//	result, err := expression.Run("sum", 1, 2) // "3"
//
// Вызов незарегистрированной процедуры — ошибка ErrUnknownProcedure.
package expression
