package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vocalagent/vocalagent/agent"
	"github.com/vocalagent/vocalagent/auth"
	"github.com/vocalagent/vocalagent/internal/profile"
	"github.com/vocalagent/vocalagent/internal/version"
	"github.com/vocalagent/vocalagent/planner"
	"github.com/vocalagent/vocalagent/server"
	"github.com/vocalagent/vocalagent/store"
	"github.com/vocalagent/vocalagent/store/db"
	"github.com/vocalagent/vocalagent/workspace"
)

var (
	rootCmd = &cobra.Command{
		Use:     "vocalagent",
		Short:   `A voice-driven personal assistant for Google Workspace. Speak a request, approve the preview, and it lands in your mail, calendar, or tasks.`,
		Version: version.String(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Only load .env for direct binary execution (not when running as systemd service)
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:        viper.GetString("mode"),
				Addr:        viper.GetString("addr"),
				Port:        viper.GetInt("port"),
				Data:        viper.GetString("data"),
				Driver:      viper.GetString("driver"),
				DSN:         viper.GetString("dsn"),
				InstanceURL: viper.GetString("instance-url"),
				Version:     version.GetCurrentVersion(viper.GetString("mode")),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				panic(err)
			}
			slog.Info("starting vocalagent", "build", version.StringFull(), "mode", instanceProfile.Mode)

			ctx, cancel := context.WithCancel(context.Background())
			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				slog.Error("failed to migrate", "error", err)
				return
			}

			s, err := newServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// SIGTERM is the graceful shutdown signal sent by most process
			// managers (systemd, kubernetes, plain `kill`).
			signal.Notify(c, terminationSignals...)

			if err := s.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
				}
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			<-ctx.Done()
		},
	}
)

// newServer wires the full pipeline: LLM planner, action registry, approval
// gate, Workspace service calls, and the HTTP surface.
func newServer(ctx context.Context, p *profile.Profile, st *store.Store) (*server.Server, error) {
	if !p.IsLLMEnabled() {
		return nil, errors.New("no LLM configured: set VOCALAGENT_LLM_API_KEY (or use VOCALAGENT_LLM_PROVIDER=ollama)")
	}

	chat, err := planner.NewChatService(&planner.Config{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		Timeout:     p.LLMTimeout,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	// Warmup is best-effort; a cold provider only costs first-request latency.
	go func() {
		warmupCtx, warmupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer warmupCancel()
		chat.Warmup(warmupCtx)
	}()

	pl := planner.NewPlanner(chat, p.LLMMaxConcurrent)

	authManager, err := auth.NewManager(p, st)
	if err != nil {
		return nil, err
	}
	services := workspace.NewServices(authManager)

	registry := agent.NewRegistry()
	agent.RegisterCatalog(registry, services)

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, falling back to UTC", "timezone", p.Timezone, "error", err)
		loc = time.UTC
	}

	reg := prometheus.NewRegistry()
	resolver := agent.NewRecipientResolver(services.Contacts, st)
	gate := agent.NewGate(registry, resolver, pl)
	dispatcher := agent.NewDispatcher(registry, st, agent.NewMetrics(reg))
	enricher := agent.NewTimeEnricher(time.Now, loc)
	processor := agent.NewProcessor(registry, gate, dispatcher, enricher)

	return server.NewServer(ctx, p, st, server.Dependencies{
		Processor:  processor,
		Planner:    pl,
		Classifier: planner.NewClassifier(chat),
		Auth:       authManager,
		Metrics:    reg,
	})
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the public url of your vocalagent instance, used for the OAuth redirect")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("vocalagent")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("VocalAgent %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Access VocalAgent at: http://localhost:%d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Access VocalAgent at: http://%s:%d\n", profile.Addr, profile.Port)
	}

	fmt.Println()
	fmt.Println("Sign in with Google to connect your Workspace account, then start talking.")
}

// isRunningAsSystemdService detects if the process is running under systemd.
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
