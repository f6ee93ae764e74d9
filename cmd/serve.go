package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robertcoopercode/better-photos/internal/bridge"
	"github.com/robertcoopercode/better-photos/internal/config"
	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/robertcoopercode/better-photos/internal/session"
	"github.com/robertcoopercode/better-photos/internal/state"
	"github.com/robertcoopercode/better-photos/internal/suggest"
	"github.com/robertcoopercode/better-photos/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Better Photos web server.
The web server provides a browser-based interface for selecting photos,
editing tags and albums on the whole selection, and reviewing AI tag
suggestions.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8090, "Port to listen on")
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
}

// buildSuggestProvider picks a suggestion backend from available API keys.
// OpenAI wins when both are configured because it also supplies embeddings
// for vocabulary matching. Returns nil when no key is set.
func buildSuggestProvider(ctx context.Context, cfg *config.Config) (suggest.Provider, suggest.Embedder) {
	if cfg.OpenAI.Token != "" {
		pricing := cfg.GetModelPricing("gpt-4.1-mini")
		provider := suggest.NewOpenAIProvider(cfg.OpenAI.Token, suggest.RequestPricing{
			Input:  pricing.Input,
			Output: pricing.Output,
		})
		fmt.Printf("Tag suggestions enabled (OpenAI, %s)\n", provider.Name())
		return provider, provider
	}
	if cfg.Gemini.APIKey != "" {
		pricing := cfg.GetModelPricing("gemini-2.5-flash")
		provider, err := suggest.NewGeminiProvider(ctx, cfg.Gemini.APIKey, suggest.RequestPricing{
			Input:  pricing.Input,
			Output: pricing.Output,
		})
		if err != nil {
			fmt.Printf("Warning: could not initialize Gemini provider: %v\n", err)
			return nil, nil
		}
		fmt.Printf("Tag suggestions enabled (Gemini, %s)\n", provider.Name())
		return provider, nil
	}
	fmt.Println("Tag suggestions disabled (no OPENAI_TOKEN or GEMINI_API_KEY)")
	return nil, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cmd.Flags().Changed("port") {
		cfg.Web.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Web.Host = mustGetString(cmd, "host")
	}

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()
	if idx.Available() {
		fmt.Printf("Photos library database: %s\n", cfg.Library.DatabasePath)
	} else {
		fmt.Printf("Warning: Photos library database not readable at %s, listings will be empty\n", cfg.Library.DatabasePath)
	}

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("could not open state database: %w", err)
	}
	defer store.Close()

	photos := bridge.NewPhotos(cfg.Bridge.OsascriptPath, cfg.Bridge.CallDelay)
	defer photos.Close()

	sess := session.New(photos, idx, store, cfg.Bridge.SettleDelay)
	defer sess.Close()

	if err := sess.Resync(cmd.Context()); err != nil {
		fmt.Printf("Warning: initial library sync failed: %v\n", err)
	}

	provider, embedder := buildSuggestProvider(cmd.Context(), cfg)
	matcher := suggest.NewMatcher(embedder)

	server := web.NewServer(cfg, web.Deps{
		Session:  sess,
		Library:  idx,
		State:    store,
		Provider: provider,
		Matcher:  matcher,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("Listening on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-sigChan:
		fmt.Println("\nShutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down web server: %w", err)
	}
	return nil
}
