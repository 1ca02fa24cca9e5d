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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/remohq/remo/ai"
	"github.com/remohq/remo/assistant"
	"github.com/remohq/remo/auth"
	"github.com/remohq/remo/calendar"
	"github.com/remohq/remo/calendar/google"
	"github.com/remohq/remo/chat/metrics"
	"github.com/remohq/remo/chat/telegram"
	"github.com/remohq/remo/dialogue"
	"github.com/remohq/remo/internal/profile"
	"github.com/remohq/remo/internal/version"
	"github.com/remohq/remo/server"
)

var rootCmd = &cobra.Command{
	Use:   "remo",
	Short: `A personal scheduling assistant that lives in your Telegram chat and books meetings on your Google Calendar.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory; systemd deployments
		// pass environment through the unit file instead.
		_ = godotenv.Load()
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version.String(),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}
		return run(instanceProfile)
	},
}

func run(instanceProfile *profile.Profile) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key, err := auth.DeriveKey(instanceProfile.TokenPassphrase)
	if err != nil {
		return err
	}
	tokenFile := auth.NewTokenFile(instanceProfile.Data, key)
	authManager := auth.NewManager(auth.Config{
		ClientID:     instanceProfile.GoogleClientID,
		ClientSecret: instanceProfile.GoogleClientSecret,
		RedirectURL:  instanceProfile.GoogleRedirectURI,
	}, tokenFile)
	if err := authManager.LoadPermanent(); err != nil {
		return err
	}

	provider := google.NewProvider(authManager.OAuthConfig())
	executor := calendar.NewExecutor(provider, authManager)

	sessions := dialogue.NewMemoryStore()
	engine := dialogue.NewEngine(sessions, authManager, executor)

	var chatter assistant.Chatter
	var chatFallback *ai.Chat
	if instanceProfile.IsChatEnabled() {
		chatFallback = ai.New(instanceProfile.OpenAIAPIKey, ai.WithModel(instanceProfile.OpenAIModel))
		chatter = chatFallback
	} else {
		slog.Warn("no OpenAI API key configured, chat fallback disabled")
	}

	m := metrics.New(sessions.Len)
	router := assistant.New(engine, authManager, executor, chatter, m)

	bot, err := telegram.New(instanceProfile.TelegramToken, router)
	if err != nil {
		return err
	}

	httpServer := server.New(instanceProfile.ListenAddr(), authManager, bot, m.Handler())

	c := make(chan os.Signal, 1)
	// Trigger graceful shutdown on SIGINT or SIGTERM.
	signal.Notify(c, terminationSignals...)
	go func() {
		<-c
		slog.Info("shutdown signal received")
		cancel()
	}()

	printGreetings(instanceProfile)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	g.Go(func() error {
		if err := httpServer.Start(ctx); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if chatFallback != nil {
		g.Go(func() error { return chatFallback.RunEviction(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8080)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("instance-url", "", "the public url of your remo instance")

	for _, flag := range []string{"mode", "addr", "port", "data", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("remo")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("Remo %s started successfully!\n", instanceProfile.Version)
	if instanceProfile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}
	fmt.Printf("Data directory: %s\n", instanceProfile.Data)
	fmt.Printf("HTTP server listening on %s\n", instanceProfile.ListenAddr())
	fmt.Printf("OAuth redirect URI: %s\n", instanceProfile.GoogleRedirectURI)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("remo exited", "error", err)
		os.Exit(1)
	}
}
