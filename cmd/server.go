package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the humanhash HTTP server",
	Long: `Serve the configured formats over HTTP. Word lists in the word-list
directory are reloaded when they change on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := viper.GetString("server.listen")
		if listen == "" {
			listen = "127.0.0.1:8484"
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(server.Config{
			Formats:    env.cfg,
			Registry:   env.reg,
			Store:      st,
			Logger:     env.logger.Named("server"),
			AuditTrail: viper.GetBool("server.audit"),
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if dir := dataPath("wordlist_dir", env.cfg.WordlistDir, "words"); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create word-list directory: %w", err)
			}
			watcher, err := dict.NewWatcher(env.reg, dir, dict.RegisterOptions{})
			if err != nil {
				return err
			}
			defer watcher.Close()
			watcher.SetLogger(env.logger.Named("watcher"))
			watcher.SetBase(env.base)
			watcher.OnChange(func(string) { srv.Reset() })
			go watcher.Run(ctx)
			fmt.Printf("Watching word lists in %s\n", dir)
		}

		if plugins := env.loader.ListPlugins(); len(plugins) > 0 {
			fmt.Printf("Loaded %d plugins:\n", len(plugins))
			for _, p := range plugins {
				fmt.Printf("  - %s (%d words)\n", p.Name, p.Dictionary.Size())
			}
		}

		httpSrv := &http.Server{Addr: listen, Handler: srv.Handler()}
		go func() {
			<-ctx.Done()
			fmt.Println("\nShutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Starting humanhash server on %s\n", listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().String("listen", "127.0.0.1:8484", "Address to listen on")
	serverCmd.Flags().Bool("audit", false, "Record every request in the audit log")
	viper.BindPFlag("server.listen", serverCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.audit", serverCmd.Flags().Lookup("audit"))
}
