package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pharmadesk/backend/internal/config"
	"github.com/pharmadesk/backend/internal/database"
	"github.com/pharmadesk/backend/internal/gateway"
	"github.com/pharmadesk/backend/internal/logging"
	"github.com/pharmadesk/backend/internal/server"
	"github.com/pharmadesk/backend/internal/session"
	"github.com/pharmadesk/backend/internal/store"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pharmadesk-api",
		Short: "PharmaDesk CRM backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Session token signing secret (overrides env)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("session.token_ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().Int("gateway-timeout-seconds", defaults.GetInt("gateway.timeout_seconds"), "Per-request store timeout in seconds")
	cmd.PersistentFlags().Bool("allow-dev-tokens", defaults.GetBool("session.allow_dev_tokens"), "Expose the local token mint endpoint")
	cmd.PersistentFlags().String("operator-id", defaults.GetString("session.operator_id"), "Identifier of the CRM operator for the startup refresh")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "session.signing_secret", "signing-secret")
	bindFlag(cmd, "session.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "gateway.timeout_seconds", "gateway-timeout-seconds")
	bindFlag(cmd, "session.allow_dev_tokens", "allow-dev-tokens")
	bindFlag(cmd, "session.operator_id", "operator-id")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	tokenManager := session.NewTokenManager(session.TokenManagerConfig{
		SigningSecret: []byte(appConfig.SessionSigningKey),
		Issuer:        "pharmadesk-auth",
		Audience:      "pharmadesk-api",
		TokenTTL:      appConfig.SessionTokenTTL,
	})

	gatewayConfig := gateway.Config{
		Database:   db,
		Session:    session.NewContextProvider(),
		Clock:      time.Now,
		IDProvider: gateway.NewUUIDProvider(),
		Logger:     logger,
		Timeout:    appConfig.GatewayTimeout,
	}

	leads, err := gateway.NewLeadGateway(gatewayConfig)
	if err != nil {
		return err
	}
	manufacturers, err := gateway.NewManufacturerGateway(gatewayConfig)
	if err != nil {
		return err
	}
	orders, err := gateway.NewOrderGateway(gateway.OrderGatewayConfig{
		Config: gatewayConfig,
		Leads:  leads,
	})
	if err != nil {
		return err
	}
	documents, err := gateway.NewDocumentGateway(gatewayConfig)
	if err != nil {
		return err
	}

	crmStore, err := store.New(store.Config{
		Leads:         leads,
		Manufacturers: manufacturers,
		Orders:        orders,
		Documents:     documents,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	if appConfig.OperatorID != "" {
		crmStore.Refresh(session.WithUserID(ctx, appConfig.OperatorID))
	} else {
		logger.Info("initial snapshot refresh skipped, no operator configured")
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:          crmStore,
		TokenManager:   tokenManager,
		Logger:         logger,
		AllowDevTokens: appConfig.AllowDevTokens,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
