package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/values"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(jsonMode, os.Stdout, os.Stderr)
}

// NewOutputTo создаёт Output с заданными потоками.
func NewOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Line выводит строку в stdout.
func (o *Output) Line(s string) {
	fmt.Fprintln(o.w, s)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

// Crawlers выводит список crawler'ов: тип и переменные.
func (o *Output) Crawlers(crawlers []crawler.Crawler) {
	if o.jsonMode {
		list := make([]crawler.Serialized, len(crawlers))
		for i, c := range crawlers {
			list[i] = c.ToSerializable()
		}
		o.JSON(list)
		return
	}

	rows := make([][]string, len(crawlers))
	for i, c := range crawlers {
		rows[i] = []string{c.Type(), formatVars(c)}
	}
	o.Table([]string{"TYPE", "VARS"}, rows)
}

// formatVars возвращает переменные в виде "a=1 b=2";
// context-переменные помечаются звёздочкой.
func formatVars(c crawler.Crawler) string {
	parts := make([]string, 0, len(c.VarNames()))
	for _, name := range c.VarNames() {
		v, _ := c.Var(name)
		mark := ""
		if crawler.IsContextVar(c, name) {
			mark = "*"
		}
		parts = append(parts, name+mark+"="+values.String(v))
	}
	return strings.Join(parts, " ")
}
