package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/backend"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/logging"
	"tespkg.in/stash/pkg/stash"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

type options struct {
	dsn       string
	sessionID string
	area      string

	logging *logging.Options
}

func defaultOptions() *options {
	o := &options{
		dsn:     backend.DefaultDsn,
		area:    string(store.Local),
		logging: logging.DefaultOptions(),
	}
	o.logging.Level = "none"
	if dsn := os.Getenv("STASH_DSN"); dsn != "" {
		o.dsn = dsn
	}
	return o
}

// withClient opens the configured host for the duration of fn.
func (o *options) withClient(fn func(c *stash.Client) error) error {
	logger, err := o.logging.Build()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	host, err := backend.Open(o.dsn, o.sessionID, backend.WithLogger(logger))
	if err != nil {
		return err
	}
	c := stash.New(host, stash.WithLogger(logger))
	defer func() {
		_ = c.Close()
		if err := host.Close(); err != nil {
			logger.Warn("close host failed", zap.Error(err))
		}
	}()
	return fn(c)
}

func (o *options) ref(namespace, name string) (stash.Ref, error) {
	return stash.NewRef(namespace, name, store.AreaName(o.area))
}

// namespaces maps positional args to a namespace filter, all without args.
func namespaces(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args
}

func cmd() *cobra.Command {
	o := defaultOptions()

	root := &cobra.Command{
		Use:          "stash",
		Short:        "stash slots tool",
		Long:         "Read and write namespaced stash slots, values are given and printed as wire text",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&o.dsn, "dsn", o.dsn, "Data source name, STASH_DSN env is used when set, e.g, file://data.yaml, etcd://localhost:2379/stash")
	root.PersistentFlags().StringVar(&o.sessionID, "session", o.sessionID, "The session id scoping the session area")
	root.PersistentFlags().StringVar(&o.area, "area", o.area, "The area of single slot commands, local or session")
	o.logging.AttachCobraFlags(root)

	root.AddCommand(
		&cobra.Command{
			Use:   "get <namespace> <name>",
			Short: "Print the wire text of a slot",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref, err := o.ref(args[0], args[1])
				if err != nil {
					return err
				}
				return o.withClient(func(c *stash.Client) error {
					v, err := c.Load(ref)
					if err != nil {
						return err
					}
					wire, err := codec.Encode(v)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), wire)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <namespace> <name> <wire>",
			Short: "Replace a slot with the given wire text",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref, err := o.ref(args[0], args[1])
				if err != nil {
					return err
				}
				v, err := codec.Decode(args[2])
				if err != nil {
					return err
				}
				return o.withClient(func(c *stash.Client) error {
					return c.Store(ref, v)
				})
			},
		},
		&cobra.Command{
			Use:   "merge <namespace> <name> <wire>",
			Short: "Deep merge an object into an object slot",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref, err := o.ref(args[0], args[1])
				if err != nil {
					return err
				}
				v, err := codec.Decode(args[2])
				if err != nil {
					return err
				}
				partial, ok := v.(value.Object)
				if !ok {
					return fmt.Errorf("merge expects an object, got %v", v.Kind())
				}
				return o.withClient(func(c *stash.Client) error {
					return c.MergeInto(ref, partial)
				})
			},
		},
		&cobra.Command{
			Use:   "rm <namespace> <name>...",
			Short: "Remove slots of a namespace",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var refs []stash.AnyKey
				for _, name := range args[1:] {
					ref, err := o.ref(args[0], name)
					if err != nil {
						return err
					}
					refs = append(refs, ref)
				}
				return o.withClient(func(c *stash.Client) error {
					return c.Remove(refs...)
				})
			},
		},
		&cobra.Command{
			Use:   "ls [namespace]...",
			Short: "List slots of both areas",
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withClient(func(c *stash.Client) error {
					return c.ForEach(func(e stash.Entry) error {
						wire, err := codec.Encode(e.Value)
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%v\t%v\n", e.Key, wire)
						return nil
					}, namespaces(args))
				})
			},
		},
		&cobra.Command{
			Use:   "size [namespace]...",
			Short: "Count slots of both areas",
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withClient(func(c *stash.Client) error {
					n, err := c.Size(namespaces(args))
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), n)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear [namespace]...",
			Short: "Remove every slot of the given namespaces, of all without any",
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withClient(func(c *stash.Client) error {
					return c.Clear(namespaces(args))
				})
			},
		},
	)
	return root
}

func main() {
	if err := cmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}
