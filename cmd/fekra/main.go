package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fekra/internal/agent"
	"fekra/internal/config"
	"fekra/internal/db"
	"fekra/internal/domain"
	"fekra/internal/gateway"
	"fekra/internal/llm"
	"fekra/internal/retry"
	"fekra/internal/seed"
	"fekra/internal/store"
	"fekra/internal/tools"
)

// buildMeta holds version and build metadata (injectable via ldflags).
type buildMeta struct {
	Version string
	GoOS    string
	GoArch  string
}

func newBuildMeta(version, goos, goarch string) buildMeta {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	return buildMeta{Version: version, GoOS: goos, GoArch: goarch}
}

func (m buildMeta) String() string {
	return fmt.Sprintf("fekra %s %s/%s", m.Version, m.GoOS, m.GoArch)
}

func newRootCommand(bm buildMeta) *cobra.Command {
	root := &cobra.Command{
		Use:   "fekra",
		Short: "FEKRA website assistant",
		Long:  "Fekra serves the FEKRA educational platform's tool-calling chat assistant.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), bm.String())
				return nil
			}
			return runDaemon(cmd, daemonShutdownCh)
		},
	}
	root.Flags().BoolP("version", "V", false, "print version and build metadata")

	configCmd := &cobra.Command{Use: "config", Short: "Manage the config file"}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config %s already exists", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)
	root.AddCommand(configCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the embedded FAQ knowledge base into the store",
		RunE:  runSeed,
	}
	root.AddCommand(seedCmd)

	return root
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg.Store.URL)
	if err != nil {
		return err
	}
	defer conn.Close()
	textIndex, err := db.EnsureSchema(conn)
	if err != nil {
		return err
	}
	st := store.NewSQLite(conn, textIndex)
	n, err := seed.FAQs(cmd.Context(), st)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d FAQs (text index: %v)\n", n, textIndex)
	return nil
}

// loadConfig reads the config file, falling back to defaults when missing.
func loadConfig() (*domain.Config, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the process-wide slog handler per config.
func setupLogger(infra domain.InfraConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(infra.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	var handler slog.Handler
	if strings.EqualFold(infra.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// runDaemon wires store → tools → model → agent → gateway and serves until
// shutdown. If shutdownCh is non-nil it returns when the channel closes (for
// tests); otherwise it blocks on OS signals.
func runDaemon(cmd *cobra.Command, shutdownCh <-chan struct{}) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg.Infra)
	logger := slog.Default()

	conn, err := db.Connect(cfg.Store.URL)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer conn.Close()
	textIndex, err := db.EnsureSchema(conn)
	if err != nil {
		return fmt.Errorf("store schema: %w", err)
	}
	st := store.NewSQLite(conn, textIndex)

	registry, err := tools.NewRegistry()
	if err != nil {
		return fmt.Errorf("tool catalog: %w", err)
	}
	executor := tools.NewExecutor(registry, st, logger)

	apiKey := config.APIKey(cfg)
	if apiKey == "" {
		logger.Warn("model API key is empty", "env", cfg.Model.APIKeyEnv)
	}
	var modelOpts []llm.Option
	if cfg.Model.BaseURL != "" {
		modelOpts = append(modelOpts, llm.WithBaseURL(cfg.Model.BaseURL))
	}
	var model domain.ChatModel = llm.NewOpenRouterModel(apiKey, cfg.Model.Name, modelOpts...)
	model = retry.NewRetryableModel(model, retry.FromDomain(cfg.Retry))

	assistant := agent.New(model, registry, executor, agent.WithLogger(logger))

	srv, err := gateway.NewServer(&cfg.Gateway, assistant)
	if err != nil {
		return err
	}
	gatewayServerForTest = srv
	gatewayShutdown := make(chan struct{})
	go func() {
		_ = srv.Run(gatewayShutdown)
	}()

	// Wait until the server has bound so "ready" means clients can connect.
	var bound string
	for i := 0; i < daemonBindWaitIterations; i++ {
		if a := srv.Addr(); a != "" {
			bound = a
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if bound == "" {
		close(gatewayShutdown)
		if err := srv.ListenErr(); err != nil {
			fmt.Fprintf(gatewayBindErrWriter, "gateway failed to bind: %v\n", err)
			return err
		}
		fmt.Fprintln(gatewayBindErrWriter, "gateway failed to bind (check port or permissions)")
		return fmt.Errorf("gateway failed to bind")
	}
	logger.Info("listening", "addr", bound, "textIndex", textIndex, "model", cfg.Model.Name)

	if shutdownCh != nil {
		<-shutdownCh
	} else {
		daemonWaitForShutdown()
	}
	close(gatewayShutdown)
	return nil
}

func getVersion() string {
	if version != "" {
		return version
	}
	b, err := os.ReadFile("VERSION")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(b))
}

// version is set at build time via ldflags for build metadata, e.g.:
//
//	go build -ldflags "-X main.version=1.0.0" -o fekra ./cmd/fekra
var version string

// daemonShutdownCh is set by tests to unblock runDaemon without signals.
// Production leaves it nil.
var daemonShutdownCh <-chan struct{}

// daemonWaitForShutdown is set by init in main_signal.go so tests can inject
// a no-op to cover the nil-shutdownCh path.
var daemonWaitForShutdown func()

// gatewayServerForTest is set when the gateway server starts so tests can
// read Addr().
var gatewayServerForTest *gateway.Server

// daemonBindWaitIterations is the max loop count waiting for the gateway to
// bind. Tests may set it to 0 to cover the failed-bind branch.
var daemonBindWaitIterations = 50

// gatewayBindErrWriter is where bind errors are written. Tests capture it;
// production uses os.Stderr.
var gatewayBindErrWriter interface{ Write([]byte) (int, error) } = os.Stderr

// runApp runs the root command with the given args and returns the exit code.
func runApp(args []string) int {
	bm := newBuildMeta(version, "", "")
	if bm.Version == "" {
		bm.Version = getVersion()
	}
	root := newRootCommand(bm)
	root.SetArgs(args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
