package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pborman/getopt/v2"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/backend"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/keys"
	"tespkg.in/stash/pkg/logging"
	"tespkg.in/stash/pkg/stash"
	"tespkg.in/stash/pkg/value"
)

var (
	dsn        = os.Getenv("STASH_DSN")
	sessionID  string
	namespaces []string
	watchKeys  []string
	verbose    bool
	help       bool

	logOptions = logging.DefaultOptions()
)

func init() {
	getopt.FlagLong(&dsn, "dsn", 'd', "Required, stash dsn, use STASH_DSN env if not given, e.g, etcd://localhost:2379/stash")
	getopt.FlagLong(&sessionID, "session", 's', "Optional, session id scoping the session area")
	getopt.FlagLong(&namespaces, "namespace", 'n', `Optional, only watch the given namespaces, e.g: "-n app -n user"`)
	getopt.FlagLong(&watchKeys, "key", 'k', `Optional, only watch the given keys, e.g: "-k app:theme"`)
	getopt.FlagLong(&verbose, "verbose", 'v', "Optional, be verbose")
	getopt.FlagLong(&help, "help", 'h', "Optional, display usage")
	getopt.SetUsage(func() {
		s := getopt.CommandLine
		printUsage(s, os.Stderr)
	})
}

func printUsage(s *getopt.Set, w io.Writer) {
	parts := []string{
		"Usage:",
		s.Program(),
		"[Options]",
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
	fmt.Fprintln(w, "Print slot changes made by other writers, available options are:")
	s.PrintOptions(w)
	fmt.Fprintln(w)
}

// buildTarget returns the change filter, keys take precedence over
// namespaces and neither means every change.
func buildTarget(namespaces, watchKeys []string) (stash.Target, error) {
	if len(watchKeys) > 0 {
		var refs []stash.AnyKey
		for _, k := range watchKeys {
			ns, name, ok := strings.Cut(k, keys.Delimiter)
			if !ok {
				return nil, fmt.Errorf("invalid key %q, expected <namespace>%s<name>", k, keys.Delimiter)
			}
			ref, err := stash.NewRef(ns, name)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return stash.Keys(refs...), nil
	}
	if len(namespaces) > 0 {
		return stash.Namespaces(namespaces...), nil
	}
	return nil, nil
}

func formatChange(ch stash.Change) string {
	return fmt.Sprintf("%v\t%v -> %v", ch.Key, wireOf(ch.OldValue), wireOf(ch.NewValue))
}

func wireOf(v value.Value) string {
	if v == nil {
		return "<absent>"
	}
	wire, err := codec.Encode(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return wire
}

// waitSignal awaits for SIGINT or SIGTERM
func waitSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}

func main() {
	getopt.Parse()
	if help {
		printUsage(getopt.CommandLine, os.Stdout)
		os.Exit(0)
	}

	// Initiate log facility.
	if verbose {
		logOptions.Level = "debug"
	}
	logger, err := logOptions.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "initiate log failed: ", err)
		os.Exit(-1)
	}
	defer func() { _ = logger.Sync() }()

	if dsn == "" {
		logger.Fatal(`option "dsn" is missing`)
	}
	target, err := buildTarget(namespaces, watchKeys)
	if err != nil {
		logger.Fatal("invalid watch target", zap.Error(err))
	}

	host, err := backend.Open(dsn, sessionID, backend.WithLogger(logger))
	if err != nil {
		logger.Fatal("open stash failed", zap.Error(err))
	}
	defer host.Close()

	c := stash.New(host, stash.WithLogger(logger))
	defer c.Close()
	c.OnChange(func(ch stash.Change) {
		fmt.Println(formatChange(ch))
	}, target)
	logger.Info("Watching", zap.String("dsn", dsn))

	waitSignal()
}
