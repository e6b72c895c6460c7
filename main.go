package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	appName    = "mastermind"
	appVersion = "1.0.0"
)

// Command names.
const (
	cmdPlay = "play"
	cmdMCP  = "mcp"
)

func main() {
	_ = godotenv.Load()
	log := newLogger(defaultLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.err(err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger, args []string, stdin io.Reader, stdout io.Writer) error {
	err := runCommand(ctx, log, args, stdin, stdout)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(stdout)
		return nil
	}
	return err
}

func runCommand(ctx context.Context, log *logger, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return runPlay(ctx, log, nil, stdin, stdout)
	}

	switch args[0] {
	case cmdHelp, "-h", "--help":
		printUsage(stdout)
		return nil
	case cmdPlay:
		return runPlay(ctx, log, args[1:], stdin, stdout)
	case cmdMCP:
		return runMCP(ctx, log, args[1:], &mcp.StdioTransport{})
	default:
		if args[0] != "" && args[0][0] == '-' {
			return runPlay(ctx, log, args, stdin, stdout)
		}
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "mastermind: play Mastermind against a remote game server")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  mastermind [play] [--config PATH] [--debug]")
	_, _ = fmt.Fprintln(w, "  mastermind mcp [--config PATH] [--debug]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Options:")
	_, _ = fmt.Fprintln(w, "  --config  Path to a JSON config file (default: mastermind.json, optional)")
	_, _ = fmt.Fprintln(w, "  --debug   Enable debug logging")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Environment:")
	_, _ = fmt.Fprintln(w, "  MASTERMIND_BASE_URL         Game server URL (default: "+defaultBaseURL+")")
	_, _ = fmt.Fprintln(w, "  MASTERMIND_USER_AGENT       User-Agent header")
	_, _ = fmt.Fprintln(w, "  MASTERMIND_REQUEST_TIMEOUT  Per-request timeout, e.g. 10s (default: none)")
	_, _ = fmt.Fprintln(w, "  MASTERMIND_EXIT_GRACE       Wait for game deletion on exit (default: 2s)")
	_, _ = fmt.Fprintln(w, "  MASTERMIND_LOG_LEVEL        debug, info, warn or error")
	_, _ = fmt.Fprintln(w, "  NO_COLOR                    Disable colored log output")
}

// setup parses the shared flags, loads config and builds the session.
func setup(log *logger, name string, args []string) (appConfig, *session, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		debug      bool
	)
	fs.StringVar(&configPath, "config", defaultConfigPath, "config path")
	fs.BoolVar(&debug, "debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return appConfig{}, nil, err
	}
	if fs.NArg() > 0 {
		return appConfig{}, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return appConfig{}, nil, err
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	log.setLevel(cfg.LogLevel)

	client, err := newAPIClient(cfg)
	if err != nil {
		return appConfig{}, nil, err
	}
	log.debugf("server: %s", client.baseURL)
	return cfg, newSession(client, log), nil
}

func runPlay(ctx context.Context, log *logger, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, sess, err := setup(log, cmdPlay, args)
	if err != nil {
		return err
	}
	return newREPL(sess, stdin, stdout, log, cfg.ExitGrace).run(ctx)
}

func runMCP(ctx context.Context, log *logger, args []string, t mcp.Transport) error {
	cfg, sess, err := setup(log, cmdMCP, args)
	if err != nil {
		return err
	}
	log.info("serving MCP on stdio")
	return newMCPFront(sess, log, cfg.ExitGrace).serve(ctx, t)
}
