package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Printer writes user facing status lines. In quiet mode only errors are
// written.
type Printer struct {
	out   io.Writer
	color bool
	quiet bool
	mu    sync.Mutex
}

// NewPrinter creates a printer for out. Colors are enabled when out is a
// terminal and NO_COLOR is unset.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, color: isTerminal(out) && os.Getenv("NO_COLOR") == ""}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetQuiet toggles quiet mode
func (p *Printer) SetQuiet(quiet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quiet = quiet
}

// Quiet reports whether quiet mode is on
func (p *Printer) Quiet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quiet
}

// SetColor forces colors on or off
func (p *Printer) SetColor(color bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.color = color
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) paint(fn func(string) string, text string) string {
	if !p.color {
		return text
	}
	return fn(text)
}

func (p *Printer) println(always bool, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet && !always {
		return
	}
	fmt.Fprintln(p.out, text)
}

// Line prints a plain status line
func (p *Printer) Line(msg string) {
	p.println(false, msg)
}

// Error prints an error message in red, even in quiet mode
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	p.println(true, p.paint(Red, msg))
}

// Success prints a success message in green
func (p *Printer) Success(msg string) {
	p.println(false, p.paint(Green, msg))
}

// Info prints a labelled value
func (p *Printer) Info(label string, value string) {
	p.println(false, fmt.Sprintf("%s: %s", p.paint(Cyan, label), p.paint(Yellow, value)))
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	p.println(false, p.paint(Yellow, msg))
}

// Highlight prints a highlighted message in magenta
func (p *Printer) Highlight(msg string) {
	p.println(false, p.paint(Magenta, msg))
}

var defaultPrinter = NewPrinter(os.Stdout)

// Default returns the printer writing to stdout
func Default() *Printer {
	return defaultPrinter
}

// SetQuietMode toggles quiet mode on the default printer
func SetQuietMode(quiet bool) {
	defaultPrinter.SetQuiet(quiet)
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	defaultPrinter.Error(msg, args...)
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	defaultPrinter.Success(msg)
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	defaultPrinter.Info(label, value)
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	defaultPrinter.Warning(msg, args...)
}
