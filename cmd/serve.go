package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/logger"
	"github.com/spigell/mockwise/internal/server"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, log := setup()
	log.Info("starting the mockwise server", zap.String("version", resolveVersion()))

	d, err := buildDeps(ctx, config, log, true)
	if err != nil {
		log.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	handler := server.NewInterviewHandler(d.interviews, d.scorer, d.guard, d.store, logger.Component(log, "http"))
	srv := server.New(handler, d.metrics, logger.Component(log, "http"))

	listen := config.Server.Listen
	if listen == "" {
		listen = defaultListen
	}

	if err := srv.Run(ctx, listen); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
