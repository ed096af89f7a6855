package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/telemetry"
	"github.com/ramgopal99/centipede/internal/values"
)

// Опции subprocess wrapper'а.
const (
	// OptionBinary — исполняемый файл (по умолчанию текущий процесс).
	OptionBinary = "binary"

	// OptionArgs — аргументы перед адресами каналов.
	// По умолчанию ["bootstrap"], если binary не задан.
	OptionArgs = "args"

	// OptionEnv — переменные окружения поверх окружения текущего процесса.
	OptionEnv = "env"

	// OptionTimeout — таймаут в секундах (0 — без таймаута).
	OptionTimeout = "timeout"
)

// BootstrapCommand — подкоманда CLI, выполняющая запрос в дочернем процессе.
const BootstrapCommand = "bootstrap"

// waitDelay — сколько ждать закрытия вывода после завершения процесса.
const waitDelay = 2 * time.Second

// maxStderr ограничивает объём stderr в ExecutionError.
const maxStderr = 64 * 1024

// ExecutionError — дочерний процесс завершился с ошибкой.
type ExecutionError struct {
	ExitCode int    // код завершения (-1, если процесс не запустился)
	Stderr   string // захваченный stderr
	Err      error  // причина запуска, если процесс не стартовал
}

// Error реализует интерфейс error.
func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("subprocess exited with code %d", e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap возвращает ErrSubprocessExecution и причину.
func (e *ExecutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSubprocessExecution, e.Err}
	}
	return []error{ErrSubprocessExecution}
}

// SubprocessWrapper выполняет задачу в отдельном процессе.
//
// Протокол:
//  1. запрос (задача и вложения) пишется в канал запроса
//  2. запускается "binary args... <request> <response>"
//  3. после выхода с кодом 0 результаты читаются из канала ответа
//
// Дочерний процесс выполняет Bootstrap. Ненулевой код выхода —
// *ExecutionError со stderr, отсутствующий или некорректный ответ —
// ErrMalformedResponse, превышение таймаута — ErrSubprocessTimeout.
type SubprocessWrapper struct {
	Options
}

// NewSubprocessWrapper создаёт новый SubprocessWrapper.
func NewSubprocessWrapper() *SubprocessWrapper {
	return &SubprocessWrapper{Options: newOptions(NameSubprocess)}
}

// Run выполняет задачу в дочернем процессе.
func (w *SubprocessWrapper) Run(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	started := time.Now()
	result, err := w.run(ctx, t)
	telemetry.ObserveWrapperRun(w.Name(), t.Type(), started, len(result), err)
	return result, err
}

func (w *SubprocessWrapper) run(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	binary, args, err := w.command()
	if err != nil {
		return nil, err
	}
	env, err := w.environ()
	if err != nil {
		return nil, err
	}
	timeout, err := w.timeout()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "centipede-*")
	if err != nil {
		return nil, fmt.Errorf("create channel directory: %w", err)
	}
	defer os.RemoveAll(dir)

	request := NewFileChannel(filepath.Join(dir, "request.json"))
	defer request.Close()
	response := NewFileChannel(filepath.Join(dir, "response.json"))
	defer response.Close()

	data, err := json.Marshal(NewRequest(t))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if err := request.Write(data); err != nil {
		return nil, err
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, append(args, request.Location(), response.Location())...)
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := telemetry.WithTask(telemetry.FromContext(ctx), t.Type())
	logger.Debug("spawning subprocess", "binary", binary, "args", args, "attachments", len(t.Attachments()))

	runErr := cmd.Run()

	if runErr != nil {
		if timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("subprocess timed out", "timeout", timeout)
			return nil, fmt.Errorf("%w: %s after %s", ErrSubprocessTimeout, t.Type(), timeout)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("subprocess cancelled: %w", ctx.Err())
		}

		execErr := &ExecutionError{ExitCode: -1, Stderr: truncate(stderr.String())}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		} else {
			execErr.Err = runErr
		}
		logger.Debug("subprocess failed", "exit_code", execErr.ExitCode)
		return nil, execErr
	}

	logger.Debug("subprocess finished", "stdout_bytes", stdout.Len())

	payload, err := response.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	result, err := crawler.UnmarshalList(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return result, nil
}

// command возвращает исполняемый файл и аргументы.
func (w *SubprocessWrapper) command() (string, []string, error) {
	binary := values.GetString(w.values, OptionBinary)

	args, err := values.GetStringSlice(w.values, OptionArgs)
	if err != nil {
		return "", nil, fmt.Errorf("wrapper option %s: %w", OptionArgs, err)
	}

	if binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", nil, fmt.Errorf("resolve executable: %w", err)
		}
		binary = exe
		if !w.HasOption(OptionArgs) {
			args = []string{BootstrapCommand}
		}
	}
	return binary, args, nil
}

// environ возвращает окружение текущего процесса с опцией env поверх.
func (w *SubprocessWrapper) environ() ([]string, error) {
	overrides, err := values.GetStringMap(w.values, OptionEnv)
	if err != nil {
		return nil, fmt.Errorf("wrapper option %s: %w", OptionEnv, err)
	}

	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range overrides {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env, nil
}

// timeout возвращает таймаут из опции timeout (секунды).
func (w *SubprocessWrapper) timeout() (time.Duration, error) {
	v, ok := w.values[OptionTimeout]
	if !ok || v == nil {
		return 0, nil
	}

	var seconds float64
	switch n := v.(type) {
	case int:
		seconds = float64(n)
	case int64:
		seconds = float64(n)
	case float64:
		seconds = n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("wrapper option %s: %w: %q", OptionTimeout, values.ErrInvalidShape, n)
		}
		seconds = f
	default:
		return 0, fmt.Errorf("wrapper option %s: %w: %T", OptionTimeout, values.ErrInvalidShape, v)
	}
	if seconds <= 0 {
		return 0, nil
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func truncate(s string) string {
	if len(s) <= maxStderr {
		return s
	}
	return s[len(s)-maxStderr:]
}
