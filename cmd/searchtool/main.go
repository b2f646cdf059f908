package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"searchtool/internal/adapter/mcpserver"
	"searchtool/internal/adapter/search"
	"searchtool/internal/adapter/tool"
	"searchtool/internal/domain"
	"searchtool/internal/infra/config"
	"searchtool/internal/infra/logger"
	"searchtool/internal/infra/tracer"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultConfigPath = "searchtool.yaml"

var errUsage = errors.New("usage")

// errDegraded marks a search the provider refused or never answered. The
// reason has already been printed.
var errDegraded = errors.New("search degraded")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n\nRun 'searchtool --help' for usage information.\n", styleError.Render(err.Error()))
		return 2
	}
	if cli.help || cli.command == "" {
		showUsage(stdout)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cli.command {
	case "web", "news":
		err = runSearch(ctx, cli, stdout, stderr)
	case "serve":
		err = runServe(ctx, cli, stdin, stdout)
	case "tools":
		err = runTools(cli.rest, stdout)
	case "encrypt":
		err = runEncrypt(cli.rest, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\nRun 'searchtool --help' for usage information.\n", cli.command)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDegraded):
		return 1
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%s: %v\n", cli.command, err)
		return 2
	default:
		fmt.Fprintf(stderr, "%s %v\n", styleError.Render(cli.command+":"), err)
		return 1
	}
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, `searchtool - web and news search for agents

USAGE:
    searchtool [--config PATH] COMMAND [ARGS]

COMMANDS:
    web QUERY        Search the web and print the top results
    news QUERY       Search recent news and print the top results
    serve            Serve web_search and news_search as MCP tools on stdio
    tools [NAME]     List the MCP tools, or print one tool's input schema
    encrypt VALUE    Encrypt a secret for the config file (needs SEARCHTOOL_CONFIG_KEY)

FLAGS:
    -h, --help       Show this help message
    --config PATH    Config file path (default: ./searchtool.yaml)

CONFIGURATION:
    API key:      SERPER_API_KEY or SEARCHTOOL_SEARCH_API_KEY
    Environment:  SEARCHTOOL_* variables override the config file

EXIT STATUS:
    0 results or an empty answer, 1 provider refused or unreachable, 2 usage error

EXAMPLES:
    searchtool web "golang generics"
    searchtool news "open source funding"
    searchtool tools web_search
    searchtool --config /etc/searchtool.yaml serve`)
}

type cliArgs struct {
	configPath string
	command    string
	rest       []string
	help       bool
}

// parseArgs reads global flags up to the command name; everything after the
// command belongs to it.
func parseArgs(args []string) (cliArgs, error) {
	cli := cliArgs{configPath: os.Getenv("SEARCHTOOL_CONFIG")}
	if cli.configPath == "" {
		cli.configPath = defaultConfigPath
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help" || arg == "help":
			cli.help = true
			return cli, nil
		case arg == "--config":
			if i+1 >= len(args) {
				return cli, fmt.Errorf("--config requires a path")
			}
			cli.configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			cli.configPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-"):
			return cli, fmt.Errorf("unknown flag: %s", arg)
		default:
			cli.command = arg
			cli.rest = args[i+1:]
			return cli, nil
		}
	}
	return cli, nil
}

// bootstrap loads config and sets up logging and tracing. The returned
// cleanup flushes spans and closes the log output.
func bootstrap(ctx context.Context, path string) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		logCloser()
		return nil, nil, nil, fmt.Errorf("tracer: %w", err)
	}

	cleanup := func() {
		if err := tracerShutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracer shutdown", "error", err)
		}
		logCloser()
	}
	return cfg, log, cleanup, nil
}

func runSearch(ctx context.Context, cli cliArgs, stdout, stderr io.Writer) error {
	query := strings.TrimSpace(strings.Join(cli.rest, " "))
	if query == "" {
		return fmt.Errorf("%w: searchtool %s QUERY", errUsage, cli.command)
	}
	variant, err := domain.ParseVariant(cli.command)
	if err != nil {
		return err
	}

	cfg, log, cleanup, err := bootstrap(ctx, cli.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := search.NewClient(cfg.Search, logger.Component(log, "search"))
	if err != nil {
		return err
	}

	res := client.Lookup(ctx, domain.QueryRequest{Query: query, Variant: variant})

	fmt.Fprintln(stderr, styleHeader.Render(fmt.Sprintf("%s results for %q", variant, query)))
	if res.Truncated {
		fmt.Fprintln(stderr, styleWarning.Render("provider response was too large and was cut off"))
	}
	switch {
	case res.Degraded():
		msg := res.Text
		if msg == "" {
			msg = fmt.Sprintf("no response from the search provider after %d attempts", res.Attempts)
		}
		fmt.Fprintln(stderr, styleWarning.Render(msg))
		return errDegraded
	case res.Text == "":
		fmt.Fprintln(stderr, styleDim.Render(tool.NoResults))
	default:
		fmt.Fprintln(stdout, res.Text)
	}
	return nil
}

// newRegistry registers the search tools over s.
func newRegistry(s tool.Searcher, log *slog.Logger) (*tool.Registry, error) {
	reg := tool.NewRegistry(log)
	for _, t := range []domain.Tool{
		tool.NewWebSearchTool(s, log),
		tool.NewNewsSearchTool(s, log),
	} {
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}
	return reg, nil
}

func runServe(ctx context.Context, cli cliArgs, stdin io.Reader, stdout io.Writer) error {
	cfg, log, cleanup, err := bootstrap(ctx, cli.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := search.NewClient(cfg.Search, logger.Component(log, "search"))
	if err != nil {
		return err
	}

	reg, err := newRegistry(client, logger.Component(log, "tool"))
	if err != nil {
		return err
	}

	srv := mcpserver.New(version, reg, cfg.Server, logger.Component(log, "mcp"))
	return srv.Serve(ctx, stdin, stdout)
}

// runTools describes the tools serve publishes. Nothing is executed, so no
// config or API key is needed.
func runTools(args []string, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: searchtool tools [NAME]", errUsage)
	}
	reg, err := newRegistry(nil, logger.Nop())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, t := range reg.List() {
			fmt.Fprintf(stdout, "%s  %s\n", styleHeader.Render(t.Name()), t.Description())
		}
		return nil
	}

	t, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	var schema bytes.Buffer
	if err := json.Indent(&schema, t.Schema().Parameters, "", "  "); err != nil {
		return fmt.Errorf("format schema: %w", err)
	}
	fmt.Fprintln(stdout, schema.String())
	return nil
}

func runEncrypt(args []string, stdout io.Writer) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("%w: searchtool encrypt VALUE", errUsage)
	}
	passphrase := os.Getenv("SEARCHTOOL_CONFIG_KEY")
	if passphrase == "" {
		return domain.NewDomainError("encrypt", domain.ErrEncryption, "SEARCHTOOL_CONFIG_KEY is not set")
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return domain.NewDomainError("encrypt", domain.ErrEncryption, err.Error())
	}
	fmt.Fprintf(stdout, "enc:%s\n", enc)
	return nil
}
