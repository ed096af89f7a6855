package expression

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robertkrimen/otto"

	"github.com/ramgopal99/centipede/internal/values"
)

// RegisterStandard регистрирует стандартный набор процедур.
//
// Вызывается явно при старте процесса (cmd/centipede) до загрузки
// конфигураций:
//   - pad, retimepad — нумерация кадров image sequence
//   - upper, lower, replace, remove — работа с текстом
//   - sum, sub, mult, div — арифметика
//   - eval — JavaScript-выражение (otto)
func RegisterStandard(r *Registry) {
	// image sequence
	r.Register("pad", padding)
	r.Register("retimepad", retimePadding)

	// текст
	r.Register("upper", upper)
	r.Register("lower", lower)
	r.Register("replace", replace)
	r.Register("remove", remove)

	// арифметика
	r.Register("sum", arithmetic(func(a, b float64) (float64, error) { return a + b, nil }))
	r.Register("sub", arithmetic(func(a, b float64) (float64, error) { return a - b, nil }))
	r.Register("mult", arithmetic(func(a, b float64) (float64, error) { return a * b, nil }))
	r.Register("div", arithmetic(func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrInvalidArgument)
		}
		return a / b, nil
	}))

	r.Register("eval", evaluate)
}

// padding возвращает номер кадра, дополненный нулями до size.
func padding(args ...string) (string, error) {
	if err := expectArgs(args, 2); err != nil {
		return "", err
	}
	frame, err := toInt(args[0])
	if err != nil {
		return "", err
	}
	size, err := toInt(args[1])
	if err != nil {
		return "", err
	}
	return zfill(frame, size), nil
}

// retimePadding сдвигает номер кадра на retime и дополняет нулями.
func retimePadding(args ...string) (string, error) {
	if err := expectArgs(args, 3); err != nil {
		return "", err
	}
	frame, err := toInt(args[0])
	if err != nil {
		return "", err
	}
	retime, err := toInt(args[1])
	if err != nil {
		return "", err
	}
	size, err := toInt(args[2])
	if err != nil {
		return "", err
	}
	return zfill(frame+retime, size), nil
}

func upper(args ...string) (string, error) {
	if err := expectArgs(args, 1); err != nil {
		return "", err
	}
	return strings.ToUpper(args[0]), nil
}

func lower(args ...string) (string, error) {
	if err := expectArgs(args, 1); err != nil {
		return "", err
	}
	return strings.ToLower(args[0]), nil
}

func replace(args ...string) (string, error) {
	if err := expectArgs(args, 3); err != nil {
		return "", err
	}
	return strings.ReplaceAll(args[0], args[1], args[2]), nil
}

func remove(args ...string) (string, error) {
	if err := expectArgs(args, 2); err != nil {
		return "", err
	}
	return strings.ReplaceAll(args[0], args[1], ""), nil
}

// arithmetic сворачивает аргументы слева направо бинарной операцией.
// Целочисленные результаты печатаются без дробной части.
func arithmetic(op func(a, b float64) (float64, error)) Procedure {
	return func(args ...string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("%w: expected at least 2 arguments, got %d", ErrInvalidArgument, len(args))
		}

		result, err := toFloat(args[0])
		if err != nil {
			return "", err
		}
		for _, arg := range args[1:] {
			n, err := toFloat(arg)
			if err != nil {
				return "", err
			}
			if result, err = op(result, n); err != nil {
				return "", err
			}
		}
		return values.String(result), nil
	}
}

// EvalTimeout ограничивает время одного вычисления eval.
var EvalTimeout = 2 * time.Second

// errEvalHalted — значение panic, которым прерывается VM по таймауту.
var errEvalHalted = errors.New("eval halted")

// evaluate вычисляет JavaScript-выражение.
// Каждый вызов получает собственный VM: процедуры не разделяют состояние.
// Выражение, не завершившееся за EvalTimeout, прерывается.
func evaluate(args ...string) (result string, err error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: eval expects an expression", ErrInvalidArgument)
	}

	vm := otto.New()
	vm.Interrupt = make(chan func(), 1)

	timeout := EvalTimeout
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt <- func() {
			panic(errEvalHalted)
		}
	})
	defer timer.Stop()

	defer func() {
		if caught := recover(); caught != nil {
			if caught == errEvalHalted {
				result, err = "", fmt.Errorf("%w: eval: exceeded %s", ErrInvalidArgument, timeout)
				return
			}
			panic(caught)
		}
	}()

	value, err := vm.Run(strings.Join(args, " "))
	if err != nil {
		return "", fmt.Errorf("%w: eval: %v", ErrInvalidArgument, err)
	}
	if value.IsUndefined() || value.IsNull() {
		return "", nil
	}
	return value.String(), nil
}

func expectArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgument, n, len(args))
	}
	return nil
}

func toInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	return n, nil
}

func toFloat(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, s)
	}
	return n, nil
}

func zfill(n, size int) string {
	if size < 0 {
		size = 0
	}
	return fmt.Sprintf("%0*d", size, n)
}
