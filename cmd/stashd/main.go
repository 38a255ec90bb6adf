package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"tespkg.in/stash/pkg/server"
)

func cmd() *cobra.Command {
	a := server.DefaultArgs()

	cmd := &cobra.Command{
		Use:   "stashd",
		Short: "stash service",
		Long:  "http service to inspect and edit stash slots",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(a)
		},
	}

	cmd.Flags().StringVar(&a.ListenAddr, "address", a.ListenAddr, "The address which server will serve at, STASH_HTTP_ADDR env is used when set")
	cmd.Flags().StringVar(&a.Dsn, "dsn", a.Dsn, "Data source name, STASH_DSN env is used when set, e.g, mem://, file://data.yaml, etcd://localhost:2379/stash, http://localhost:8500/stash")
	cmd.Flags().StringVar(&a.SessionID, "session", a.SessionID, "The session id scoping the session area")
	cmd.Flags().StringVar(&a.SpecPath, "openapi-spec-path", a.SpecPath, "openAPI spec base URI which can be access publicly")

	cmd.Flags().StringVar(&a.KnownHost, "host", a.KnownHost, "the host for serving these generated OpenAPIs")
	cmd.Flags().StringVar(&a.BasePath, "base-path", a.BasePath, "the base path for the generated OpenAPIs")
	cmd.Flags().StringVar(&a.Version, "version", a.Version, "the api version")
	cmd.Flags().StringVar(&a.ContactEmail, "contact-email", a.ContactEmail, "the contact email for supporting")
	cmd.Flags().StringVar(&a.Title, "title", a.Title, "title for the generated OpenAPIs")
	cmd.Flags().StringVar(&a.Schema, "schema", a.Schema, "the supported schema, accept http or https")

	a.LoggingOptions.AttachCobraFlags(cmd)

	return cmd
}

func runServer(sa *server.Args) {
	log.Printf("server started with: \n%v\n", sa)

	s, err := server.New(sa)
	if err != nil {
		log.Fatalf("unable to initialise server: %v\n", err)
	}

	s.Run()
	err = s.Wait()
	if err != nil {
		log.Fatalf("server unexpectedly terminated: %v\n", err)
	}

	s.Close()
}

func main() {
	if err := cmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}
