package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// Redactor rewrites arguments before they are written to history.
type Redactor func(args []string) []string

var builtins = []string{"help", "history", "exit", "quit"}

// ErrUnbalancedQuote is returned for a line with an open quote.
var ErrUnbalancedQuote = errors.New("unbalanced quote")

// REPL is the read-eval-print loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      Executor
	redact    Redactor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets a prompt computed before every line.
func WithPrompt(fn func() string) Option {
	return func(r *REPL) { r.prompt = fn }
}

// WithCompleter sets the vocabulary for `help <prefix>`.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) { r.completer = c }
}

// WithHistory sets the history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithRedactor hides secrets before lines reach the history.
func WithRedactor(fn Redactor) Option {
	return func(r *REPL) { r.redact = fn }
}

// New creates a REPL dispatching lines to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    func() string { return "parking> " },
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history: %v\n", err)
	}
	defer r.history.Save()

	reader := bufio.NewReader(r.input)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt())

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		args, splitErr := Split(line)
		if splitErr != nil {
			fmt.Fprintf(r.output, "Error: %v\n", splitErr)
		} else if done := r.dispatch(ctx, args); done {
			return nil
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// dispatch handles one line and reports whether the loop should end.
func (r *REPL) dispatch(ctx context.Context, args []string) bool {
	logged := args
	if r.redact != nil {
		logged = r.redact(append([]string(nil), args...))
	}
	r.history.Add(Join(logged))

	switch args[0] {
	case "exit", "quit":
		return true
	case "history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return false
	case "help":
		if len(args) > 1 {
			for _, w := range r.completer.Complete(strings.Join(args[1:], " ")) {
				fmt.Fprintln(r.output, w)
			}
			return false
		}
	}

	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return false
}

// Split breaks a line into arguments. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnbalancedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// Join quotes arguments that Split would otherwise break apart.
func Join(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"\\") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
