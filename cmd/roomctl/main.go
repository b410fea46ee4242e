package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"roomdesigner/internal/common/config"
	"roomdesigner/internal/common/logging"
	"roomdesigner/internal/design/snapshot"
	"roomdesigner/internal/design/store"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// cli carries the persistent flags and the output every command writes to.
type cli struct {
	out io.Writer

	configFile string
	statePath  string
	backend    string
	codec      string
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "roomctl - edit room designs from the terminal",
		Long:          "roomctl works on the same saved state as the designer service: log in, create projects, place furniture and export plans.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file")
	flags.StringVar(&c.statePath, "state", "", "snapshot file (file backend), overrides SNAPSHOT_FILE")
	flags.StringVar(&c.backend, "backend", "", "snapshot backend: file, sqlite, redis or memory")
	flags.StringVar(&c.codec, "codec", "", "snapshot codec: json or cbor")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log store activity to stderr")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.projectCmd(),
		c.roomCmd(),
		c.furnitureCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.discoverCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of roomctl",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(c.out, "roomctl version %s\n", version)
			},
		},
	)
	return root
}

// withStore opens the configured snapshot, runs fn on the rehydrated store
// and closes the backend. Every action fn takes is persisted on the spot.
func (c *cli) withStore(cmd *cobra.Command, fn func(st *store.Store) error) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	if c.statePath != "" {
		cfg.SnapshotFile = c.statePath
	}
	if c.backend != "" {
		cfg.SnapshotBackend = c.backend
	}
	if c.codec != "" {
		cfg.SnapshotCodec = c.codec
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	log := logging.NewWithWriter(cmd.ErrOrStderr(), level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := snapshot.OpenBackend(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer backend.Close()

	return fn(store.Open(ctx, backend, store.WithLogger(log)))
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ============================================================
// Session
// ============================================================

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <name>",
		Short: "Start a session as name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st *store.Store) error {
				st.Login(args[0])
				c.printf("Logged in as %s\n", args[0])
				return nil
			})
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session; saved projects are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st *store.Store) error {
				st.Logout()
				c.printf("Signed out\n")
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st *store.Store) error {
				s := st.State()
				if s.IsLoggedIn {
					c.printf("User:     %s\n", s.UserName)
				} else {
					c.printf("User:     (signed out)\n")
				}
				c.printf("Projects: %d\n", len(s.Projects))
				if s.CurrentProject == nil {
					c.printf("Current:  none\n")
					return nil
				}
				p := s.CurrentProject
				c.printf("Current:  %s (%s)\n", p.Name, p.ID)
				c.printf("Room:     %g x %g x %g m, %s\n", p.RoomConfig.Width, p.RoomConfig.Length, p.RoomConfig.Height, p.RoomConfig.Shape)
				c.printf("Items:    %d\n", len(p.Furniture))
				return nil
			})
		},
	}
}
