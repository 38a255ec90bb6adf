package server

import (
	"bytes"
	"fmt"
	"os"

	"tespkg.in/stash/pkg/backend"
	"tespkg.in/stash/pkg/logging"
	"tespkg.in/stash/pkg/openapi"
)

const (
	envDsn        = "STASH_DSN"
	envListenAddr = "STASH_HTTP_ADDR"
)

type Args struct {
	ListenAddr string

	Dsn string

	// SessionID scopes the session area the server works on.
	SessionID string

	// OpenAPI document endpoint
	SpecPath string

	openapi.SpecArgs

	// The logging options to use
	LoggingOptions *logging.Options
}

// DefaultArgs honours the STASH_DSN and STASH_HTTP_ADDR environment
// variables.
func DefaultArgs() *Args {
	a := &Args{
		ListenAddr: ":9113",
		Dsn:        backend.DefaultDsn,
		SessionID:  "stashd",

		SpecPath: "/_/openapi/swagger.yaml",

		// OpenAPI document options
		SpecArgs: openapi.SpecArgs{
			KnownHost:   "localhost:9113",
			BasePath:    "/",
			Version:     "0.1.0",
			Title:       "Swagger stash",
			Description: "Inspect and edit the slots kept by stash",
			Schema:      "http",
		},

		LoggingOptions: logging.DefaultOptions(),
	}
	if dsn := os.Getenv(envDsn); dsn != "" {
		a.Dsn = dsn
	}
	if addr := os.Getenv(envListenAddr); addr != "" {
		a.ListenAddr = addr
	}
	return a
}

func (a *Args) validate() error {
	if a.Schema != "http" && a.Schema != "https" {
		return fmt.Errorf("unsupported schema, accept http or https only")
	}
	if a.ListenAddr == "" {
		return fmt.Errorf("empty listen address")
	}
	return nil
}

func (a *Args) String() string {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "Listening on: ", a.ListenAddr)
	fmt.Fprintln(buf, "Underlying dsn ", a.Dsn)
	fmt.Fprintln(buf, "Session ", a.SessionID)
	fmt.Fprintln(buf, "Logging ", a.LoggingOptions)
	return buf.String()
}
