// Command hkd-relayer filters an input device's event stream for hotkeys.
//
// It reads struct input_event records on stdin, writes the events the
// consumer should see on stdout and queues SIGUSR1 with the binding's action
// id to the hotkey daemon whenever a configured chord is pressed:
//
//	intercept -g $DEVNODE | hkd-relayer | uinput -d $DEVNODE
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"hkd-relayer/internal/config"
	"hkd-relayer/internal/hotkeys"
	"hkd-relayer/internal/notify"
	"hkd-relayer/internal/procutil"
	"hkd-relayer/internal/relay"
)

var (
	findPIDFn     = procutil.FindPID
	newNotifierFn = func(pid int) notify.Notifier { return notify.NewSignal(pid) }
	isTerminalFn  = isTerminal
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run wires the relay and returns the process exit code. stdout carries only
// the event stream; every diagnostic goes to stderr.
func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("hkd-relayer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath(), "path to the YAML configuration file")
	target := fs.String("target", "", "process name to notify (overrides config target)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides config log_level)")
	check := fs.Bool("check", false, "validate the configuration, print the compiled tables and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if v := strings.TrimSpace(*target); v != "" {
		cfg.Target = v
	}
	if v := strings.TrimSpace(*logLevel); v != "" {
		cfg.LogLevel = v
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	compiled, err := cfg.Compile()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Several relayers usually run at once, one per device; the run id tells
	// their records apart in a shared journal.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())
	slog.SetDefault(logger)

	if *check {
		printCompiled(stderr, cfg, compiled)
		return 0
	}

	pid, err := findPIDFn(cfg.Target)
	if err != nil {
		slog.Error("[relay] target process not running", "target", cfg.Target, "error", err)
		fmt.Fprintf(stderr, "Error: %s not running\n", cfg.Target)
		return 1
	}
	slog.Info("[relay] relaying events",
		"target", cfg.Target,
		"pid", pid,
		"bindings", len(compiled.Bindings),
		"modifierGroups", len(compiled.Groups),
	)
	if isTerminalFn(stdout) {
		slog.Warn("[relay] stdout is a terminal; the event stream is binary and should be piped to a consumer")
	}

	r := relay.New(relay.Options{
		Groups:   compiled.Groups,
		Bindings: compiled.Bindings,
		Filter:   compiled.Filter,
		Notifier: newNotifierFn(pid),
	})
	if err := r.Run(stdin, stdout); err != nil {
		slog.Error("[relay] stopping", "error", err)
		return 1
	}
	return 0
}

// printCompiled writes the resolved tables for -check.
func printCompiled(w io.Writer, cfg config.Config, compiled config.Compiled) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "target:\t%s\n", cfg.Target)
	fmt.Fprintf(tw, "log level:\t%s\n", cfg.LogLevel)
	fmt.Fprintln(tw, "modifiers:")
	for p, group := range compiled.Groups {
		keys := make([]string, 0, len(group.Keys))
		for _, key := range group.Keys {
			keys = append(keys, hotkeys.KeyName(key))
		}
		fmt.Fprintf(tw, "  %s\t%#b\t%s\n", group.Name, compiled.Groups.Bit(p), strings.Join(keys, " "))
	}
	fmt.Fprintln(tw, "bindings:")
	for _, b := range compiled.Bindings {
		fmt.Fprintf(tw, "  %s\t%#b\taction %d\n", b.Normalized(), b.Mask(), b.Action())
	}
	fmt.Fprintln(tw, "drop:")
	for _, rule := range compiled.Filter {
		fmt.Fprintf(tw, "  %s\n", rule)
	}
	tw.Flush()
}
