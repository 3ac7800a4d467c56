package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"assistchat/cmd/assist/chat"
	"assistchat/internal/backend"
	"assistchat/internal/config"
	"assistchat/internal/conversation"
	"assistchat/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	backendURL string
	timeout    time.Duration

	// Resolved at PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "assist - terminal chat client for an AI assistant backend",
	Long: `assist is a terminal chat client for an AI assistant service.

Type a prompt, press Enter, and the reply from the backend's POST /chat
endpoint is appended to the conversation. Only one request is in flight at a
time; failures are shown as a short apology in the transcript.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .assist/config.yaml or user config dir)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Backend base URL (or set "+config.EnvBackendURL+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (default 60s)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stubCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime resolves configuration (defaults, file, .env and environment,
// then flags) and initializes logging.
func loadRuntime(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	if backendURL != "" {
		c.Backend.BaseURL = strings.TrimSpace(backendURL)
	}
	if timeout > 0 {
		c.Backend.Timeout = timeout.String()
	}
	c.Backend.BaseURL = c.Backend.ResolvedBaseURL()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(c.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger, err = logging.NewConsole(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = c
	logging.Boot("config loaded from %s, backend %s", path, c.Backend.ChatEndpoint())
	logger.Debug("Configuration resolved",
		zap.String("path", path),
		zap.String("endpoint", c.Backend.ChatEndpoint()),
		zap.Duration("timeout", c.GetBackendTimeout()))
	return nil
}

// newClient builds the backend client, falling back to the default base URL.
func newClient(c *config.Config) *backend.Client {
	return backend.New(backend.Config{
		BaseURL: c.Backend.ResolvedBaseURL(),
		Timeout: c.GetBackendTimeout(),
	})
}

// newFlow builds a fresh conversation wired to the configured backend.
func newFlow(c *config.Config) *conversation.Flow {
	store := conversation.NewStore(conversation.WithGreeting(c.UI.Greeting))
	return conversation.NewFlow(store, newClient(c))
}

func runInteractiveChat() error {
	err := chat.RunInteractiveChat(chat.Config{
		Flow:             newFlow(cfg),
		Theme:            cfg.UI.Theme,
		MaxInputChars:    cfg.UI.MaxInputChars,
		RenderMarkdown:   cfg.UI.RenderMarkdown,
		MarkdownWordWrap: cfg.UI.MarkdownWordWrap,
	})
	if err != nil {
		logging.BootError("interactive chat failed: %v", err)
		return fmt.Errorf("interactive chat failed: %w", err)
	}
	return nil
}
