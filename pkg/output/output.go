package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

var (
	mu   sync.RWMutex
	outW io.Writer
	errW io.Writer
)

// SetWriters redirects output. A nil writer restores os.Stdout or os.Stderr.
func SetWriters(out, errOut io.Writer) {
	mu.Lock()
	outW, errW = out, errOut
	mu.Unlock()
}

func stdout() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	if outW != nil {
		return outW
	}
	return os.Stdout
}

func stderr() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	if errW != nil {
		return errW
	}
	return os.Stderr
}

func Success(format string, a ...any) {
	successColor.Fprintf(stdout(), "✓ "+format+"\n", a...)
}

// Error prints a failure line to stderr.
func Error(format string, a ...any) {
	errorColor.Fprintf(stderr(), "✗ "+format+"\n", a...)
}

func Info(format string, a ...any) {
	infoColor.Fprintf(stdout(), format+"\n", a...)
}

func Warn(format string, a ...any) {
	warnColor.Fprintf(stdout(), "⚠ "+format+"\n", a...)
}

// Plain prints without decoration.
func Plain(format string, a ...any) {
	fmt.Fprintf(stdout(), format+"\n", a...)
}

func JSON(v any) error {
	enc := json.NewEncoder(stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func YAML(v any) error {
	enc := yaml.NewEncoder(stdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// ValidFormat reports whether f is a supported --output value.
func ValidFormat(f string) bool {
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Render prints v as JSON or YAML, or calls table for the table format.
func Render(format string, v any, table func() *Table) error {
	switch format {
	case FormatJSON:
		return JSON(v)
	case FormatYAML:
		return YAML(v)
	case FormatTable, "":
		table().Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Render() {
	w := stdout()

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, header := range t.headers {
		headerColor.Fprintf(w, "%-*s  ", widths[i], header)
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}

// KeyValue renders label/value pairs as an aligned two-column list.
func KeyValue(pairs [][2]string) {
	w := stdout()
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		headerColor.Fprintf(w, "%-*s", width+1, p[0]+":")
		fmt.Fprintf(w, " %s\n", p[1])
	}
}
