package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirbrooks/dictsort/internal/config"
	"github.com/amirbrooks/dictsort/internal/ctxlog"
	"github.com/amirbrooks/dictsort/internal/dict"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 1
	ExitNotFound = 3
	ExitInvalid  = 4
	ExitUnsorted = 5
	ExitInternal = 10
)

// Sorter is the sorting routine the command delegates to.
type Sorter interface {
	SortItems(ctx context.Context, input, output string) (*dict.Report, error)
}

// Env carries the process surroundings so tests can run Main without
// touching the real terminal or filesystem sorter.
type Env struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	NewSorter func(opts dict.Options) (Sorter, error)
}

func DefaultEnv() Env {
	return Env{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		NewSorter: newDictSorter,
	}
}

func (e Env) withDefaults() Env {
	def := DefaultEnv()
	if e.Stdout == nil {
		e.Stdout = def.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = def.Stderr
	}
	if e.Getenv == nil {
		e.Getenv = def.Getenv
	}
	if e.NewSorter == nil {
		e.NewSorter = def.NewSorter
	}
	return e
}

func newDictSorter(opts dict.Options) (Sorter, error) {
	s, err := dict.NewSorter(opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type GlobalFlags struct {
	Config      string
	Key         int
	KeySet      bool
	Numeric     bool
	Reverse     bool
	Unique      bool
	Pragma      bool
	TrustPragma bool
	Check       bool
	JSON        bool
	Quiet       bool
	Verbose     bool
	LogFormat   string
	Help        bool
}

// Run is the process entry point used by cmd/dictsort.
func Run(ctx context.Context, program string, args []string) int {
	return Main(ctx, program, args, DefaultEnv())
}

func Main(ctx context.Context, program string, args []string, env Env) int {
	env = env.withDefaults()

	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, program+":", err)
		return ExitUsage
	}
	if gf.Help {
		printHelp(env.Stdout, program)
		return ExitOK
	}

	inv, err := ResolveInvocation(program, rest)
	if err != nil {
		printUsage(env.Stdout, program)
		return ExitUsage
	}

	profile, err := config.Load(config.ResolvePath(gf.Config, env.Getenv))
	if err != nil {
		fmt.Fprintln(env.Stderr, program+":", err)
		return exitCodeFor(err)
	}
	applyFlags(&profile, gf)

	logger := newLogger(profile.LogLevel, profile.LogFormat, env.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Invocation resolved.", "input", inv.Input, "output", inv.Output)

	sorter, err := env.NewSorter(profile.Options())
	if err != nil {
		fmt.Fprintln(env.Stderr, program+":", err)
		return exitCodeFor(err)
	}

	report, err := sorter.SortItems(ctx, inv.Input, inv.Output)
	if report != nil {
		if gf.JSON {
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(report); encErr != nil {
				fmt.Fprintln(env.Stderr, program+": write report:", encErr)
				return ExitInternal
			}
		} else if !gf.Quiet && (gf.Verbose || profile.Check) {
			fmt.Fprintln(env.Stdout, report.Summary())
		}
	}
	if err != nil {
		if !errors.Is(err, dict.ErrOutOfDate) {
			fmt.Fprintln(env.Stderr, program+":", err)
		}
		return exitCodeFor(err)
	}
	return ExitOK
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, dict.ErrNotFound), errors.Is(err, config.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, dict.ErrInvalid), errors.Is(err, config.ErrInvalid):
		return ExitInvalid
	case errors.Is(err, dict.ErrOutOfDate):
		return ExitUnsorted
	default:
		return ExitInternal
	}
}

func applyFlags(p *config.Profile, gf GlobalFlags) {
	if gf.KeySet {
		p.KeyField = gf.Key
	}
	p.Numeric = p.Numeric || gf.Numeric
	p.Reverse = p.Reverse || gf.Reverse
	p.Unique = p.Unique || gf.Unique
	p.Pragma = p.Pragma || gf.Pragma
	p.TrustPragma = p.TrustPragma || gf.TrustPragma
	p.Check = p.Check || gf.Check
	if gf.Verbose {
		p.LogLevel = "debug"
	}
	if gf.LogFormat != "" {
		p.LogFormat = gf.LogFormat
	}
}

func printHelp(w io.Writer, program string) {
	fmt.Fprintf(w, `%[1]s: sort a dictionary file

Usage:
  %[1]s [flags] <input> [output]

The output defaults to the input, which is then sorted in place.

Flags (accepted anywhere; "--" ends flag parsing; switches take =true or =false):
  --config <path>      Profile YAML (default: $DICTSORT_CONFIG or ./.dictsort.yaml)
  --key <n>            Sort by the n-th whitespace-separated field (0 = whole line)
  --numeric            Compare the key numerically
  --reverse            Reverse the order
  --unique             Drop duplicate entries
  --pragma             Ensure the formatted-data pragma header is present
  --trust-pragma       Skip files that already carry the pragma header
  --check              Do not write; exit 5 if the file is not sorted
  --json               Print the run report as JSON
  --quiet              Suppress the summary line
  --verbose            Debug logging and a summary line
  --log-format <fmt>   text|json
  -h, --help           Show this help
`, program)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow flags anywhere by scanning and stripping known globals.
	gf := GlobalFlags{}
	boolFlags := map[string]*bool{
		"--numeric":      &gf.Numeric,
		"--reverse":      &gf.Reverse,
		"--unique":       &gf.Unique,
		"--pragma":       &gf.Pragma,
		"--trust-pragma": &gf.TrustPragma,
		"--check":        &gf.Check,
		"--json":         &gf.JSON,
		"--quiet":        &gf.Quiet,
		"--verbose":      &gf.Verbose,
	}
	out := make([]string, 0, len(args))
	skip := 0

	for i := 0; i < len(args); i++ {
		if skip > 0 {
			skip--
			continue
		}
		a := args[i]
		name, value, hasValue := strings.Cut(a, "=")
		if !strings.HasPrefix(a, "--") {
			name, value, hasValue = a, "", false
		}
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", name)
			}
			skip = 1
			return args[i+1], nil
		}
		switch name {
		case "--":
			return finishFlags(gf, append(out, args[i+1:]...))
		case "-h", "--help":
			gf.Help = true
		case "--config":
			v, err := takeValue()
			if err != nil {
				return gf, nil, err
			}
			gf.Config = v
		case "--key":
			v, err := takeValue()
			if err != nil {
				return gf, nil, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return gf, nil, fmt.Errorf("--key expects a non-negative integer, got %q", v)
			}
			gf.Key, gf.KeySet = n, true
		case "--log-format":
			v, err := takeValue()
			if err != nil {
				return gf, nil, err
			}
			gf.LogFormat = strings.ToLower(strings.TrimSpace(v))
		default:
			dst, ok := boolFlags[name]
			if !ok {
				out = append(out, a)
				continue
			}
			if !hasValue {
				*dst = true
				continue
			}
			v, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return gf, nil, fmt.Errorf("%s expects true or false, got %q", name, value)
			}
			*dst = v
		}
	}
	return finishFlags(gf, out)
}

func finishFlags(gf GlobalFlags, rest []string) (GlobalFlags, []string, error) {
	switch gf.LogFormat {
	case "", "text", "json":
	default:
		return gf, nil, fmt.Errorf("invalid --log-format %q: must be 'text' or 'json'", gf.LogFormat)
	}
	if gf.Quiet && gf.Verbose {
		return gf, nil, errors.New("--quiet and --verbose are mutually exclusive")
	}
	return gf, rest, nil
}
