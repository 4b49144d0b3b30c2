package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"osuparse/dotosu"
)

const (
	exitOK      = 0
	exitUsage   = 1
	exitRead    = 2
	exitInvalid = 3
)

var (
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	exit   = os.Exit
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("osuparse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "INI config file (default $OSUPARSE_CONFIG)")
	workers := fs.Int("workers", 0, "number of parse workers (overrides config)")
	indexPath := fs.String("index", "", "SQLite index path (overrides config)")
	logLevel := fs.String("log", "", "log level: debug, info, warn, error")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}
	if *logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
	}
	logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "parse":
		return cmdParse(ctx, cfg, cmdArgs, stdout)
	case "index":
		return cmdIndex(ctx, cfg, cmdArgs, stdout)
	case "fetch":
		return cmdFetch(ctx, cfg, cmdArgs, stdout)
	case "fetchset":
		return cmdFetchSet(ctx, cfg, cmdArgs, stdout)
	case "show":
		return cmdShow(ctx, cfg, cmdArgs, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return exitUsage
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "usage: osuparse [options] command [args]\n")
	fmt.Fprintf(w, "\nCommands:\n")
	fmt.Fprintf(w, "  parse [-hr] [-ez] [-rate R] [-sliders] FILE...  decode .osu files and print a JSON summary\n")
	fmt.Fprintf(w, "  index DIR                           decode every .osu under DIR into the index\n")
	fmt.Fprintf(w, "  fetch ID...                         download difficulties by beatmap ID and index them\n")
	fmt.Fprintf(w, "  fetchset SETID...                   download beatmap sets and index their difficulties\n")
	fmt.Fprintf(w, "  show ID                             print an indexed beatmap\n")
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
}

// exitCode maps a decode error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, dotosu.ErrIO):
		return exitRead
	default:
		return exitInvalid
	}
}

// describe turns a decode error into the message shown to the user.
func describe(err error) string {
	var fe *dotosu.FieldTooLongError
	var se *dotosu.SyntaxError
	switch {
	case errors.Is(err, dotosu.ErrIO):
		return "could not read file: " + err.Error()
	case errors.As(err, &fe):
		return fmt.Sprintf("field %s is too long (%d bytes, limit %d)", fe.Field, fe.Len, dotosu.MaxStringLen)
	case errors.As(err, &se):
		return "not a valid beatmap: " + err.Error()
	default:
		return err.Error()
	}
}
