package wrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ramgopal99/centipede/internal/crawler"
)

// Bootstrap выполняет запрос subprocess wrapper'а в дочернем процессе:
// читает задачу из канала запроса, вызывает Output и пишет
// результаты в канал ответа.
//
// Реестры задач и типов crawler'ов должны быть заполнены заранее.
func Bootstrap(ctx context.Context, request, response Channel) error {
	data, err := request.Read()
	if err != nil {
		return err
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	t, err := req.Task()
	if err != nil {
		return fmt.Errorf("restore task: %w", err)
	}

	result, err := t.Output(ctx)
	if err != nil {
		return err
	}

	payload, err := crawler.MarshalList(result)
	if err != nil {
		return err
	}
	return response.Write(payload)
}

// BootstrapMain — точка входа дочернего процесса.
// args — адреса каналов запроса и ответа. Возвращает код выхода.
func BootstrapMain(ctx context.Context, args []string, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintf(stderr, "usage: %s <request> <response>\n", BootstrapCommand)
		return 2
	}

	err := Bootstrap(ctx, OpenFileChannel(args[0]), OpenFileChannel(args[1]))
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return 1
	}
	return 0
}
