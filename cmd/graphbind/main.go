package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hanpama/graphbind/internal/binding"
	"github.com/hanpama/graphbind/internal/config"
	"github.com/hanpama/graphbind/internal/engine"
	"github.com/hanpama/graphbind/internal/eventbus"
	"github.com/hanpama/graphbind/internal/introspection"
	"github.com/hanpama/graphbind/internal/language"
	"github.com/hanpama/graphbind/internal/otel"
	"github.com/hanpama/graphbind/internal/registry"
	"github.com/hanpama/graphbind/internal/schema"
	"github.com/hanpama/graphbind/internal/server"
)

const rootUsage = `graphbind — GraphQL data-fetcher invocation framework

USAGE:
  graphbind <command> [flags]

COMMANDS:
  serve            Run the demo GraphQL server
  check-schema     Parse & validate a GraphQL SDL file
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>            YAML config file (flags below override it)
  -schema <file>            GraphQL SDL file (default: built-in demo schema)
  -graphql.introspection <bool>  Enable GraphQL introspection (default: true)
  -server.addr <addr>       HTTP listen address (default: :8080)
  -server.pretty            Pretty-print JSON responses
  -server.timeout <dur>     Per-request timeout, e.g. 10s (default: 10s)
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: graphbind)
`

const checkSchemaUsage = `check-schema FLAGS:
  -schema <file>   GraphQL SDL file to validate (required)
  (Exits non-zero on validation errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphbind", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "check-schema":
		return cmdCheckSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check-schema":
		fmt.Print(checkSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	configFile := ""
	schemaFile := ""

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configFile, "config", configFile, "YAML config file")
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	enableIntrospection := fs.Bool("graphql.introspection", true, "Enable GraphQL introspection")
	addr := fs.String("server.addr", "", "HTTP listen address")
	pretty := fs.Bool("server.pretty", false, "Pretty-print JSON responses")
	timeout := fs.Duration("server.timeout", 0, "Per-request timeout")
	otelEndpoint := fs.String("otel.endpoint", "", "OTLP collector endpoint")
	otelService := fs.String("otel.service", "", "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}
	// Flags override file values.
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *pretty {
		cfg.Server.Pretty = true
	}
	if *timeout > 0 {
		cfg.Server.Timeout = *timeout
	}
	if *otelEndpoint != "" {
		cfg.Otel.Endpoint = *otelEndpoint
	}
	if *otelService != "" {
		cfg.Otel.Service = *otelService
	}

	sdl := demoSDL
	if schemaFile != "" {
		data, err := os.ReadFile(schemaFile)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		sdl = string(data)
	}
	astSchema, err := language.LoadSchema(schemaFile, sdl)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	sch := schema.Build(astSchema)

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := registry.New(registry.WithLogger(logger))
	if schemaFile == "" {
		registerDemoFetchers(reg)
	}

	var source engine.FetcherSource = reg
	if *enableIntrospection {
		wrapper := introspection.Wrap(source, sch)
		source = wrapper.Source
		sch = wrapper.Schema
	}

	var sopts []server.Option
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.Server.Timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.Server.Timeout))
	}
	if cfg.Server.MaxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(source, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, mux)
}

func cmdCheckSchema(args []string) error {
	schemaFile := ""
	fs := flag.NewFlagSet("check-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return fmt.Errorf("-schema is required")
	}
	data, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := language.LoadSchema(schemaFile, string(data)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	fmt.Printf("%s: OK\n", schemaFile)
	return nil
}

// ------------------ Demo schema & fetchers ------------------

const demoSDL = `
type Query {
  hello(name: String): String!
  viewer: Viewer
  search(term: String!, limit: Int): [SearchResult!]!
}

type Mutation {
  echo(input: EchoInput!): EchoResult!
}

type Viewer {
  id: ID!
  locale: String!
  sessionAge: Int
}

type EchoResult {
  message: String!
  tags: [String!]
}

input EchoInput {
  message: String!
  tags: [String!]
}

union SearchResult = Viewer | EchoResult
`

type viewer struct {
	ID     string `json:"id"`
	Locale string `json:"locale"`
}

type echoInput struct {
	Message string   `json:"message"`
	Tags    []string `json:"tags"`
}

type echoResult struct {
	Message string   `json:"message"`
	Tags    []string `json:"tags"`
}

// registerDemoFetchers wires a handful of handlers exercising each binding
// source: input arguments, headers, query params, and cookies.
func registerDemoFetchers(reg *registry.Registry) {
	reg.MustRegister("Query", "hello",
		func(name *string) string {
			if name == nil {
				return "Hello, world!"
			}
			return "Hello, " + *name + "!"
		},
		registry.WithParams(binding.Named("name")),
	)

	reg.MustRegister("Query", "viewer",
		func(locale string, session *string) *viewer {
			id := "anonymous"
			if session != nil {
				id = *session
			}
			return &viewer{ID: id, Locale: locale}
		},
		registry.WithParams(
			binding.Named("locale").FromHeader("Accept-Language").WithDefault("en"),
			binding.Named("session").FromCookie("session"),
		),
	)

	reg.MustRegister("Query", "search",
		func(ctx context.Context, term string, limit *int) ([]echoResult, error) {
			n := 3
			if limit != nil {
				n = *limit
			}
			out := make([]echoResult, 0, n)
			for i := 0; i < n; i++ {
				out = append(out, echoResult{Message: term})
			}
			// Simulate a slow backend so the async path is visible in traces.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
			return out, nil
		},
		registry.WithParams(binding.Named("term").Require(), binding.Named("limit")),
		registry.Async(),
	)

	reg.MustRegister("Mutation", "echo",
		func(in echoInput) echoResult {
			return echoResult{Message: in.Message, Tags: in.Tags}
		},
		registry.WithParams(binding.Named("input").Require()),
	)

	reg.RegisterTypeResolver("SearchResult", func(value any) (string, bool) {
		switch value.(type) {
		case *viewer, viewer:
			return "Viewer", true
		case echoResult, *echoResult:
			return "EchoResult", true
		}
		return "", false
	})
}
