package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"care-booking/internal/data/repository"
	"care-booking/internal/usecase"
	"care-booking/internal/wire"
	"care-booking/internal/worker"
	"care-booking/pkg/cache"
	"care-booking/pkg/database"
	"care-booking/pkg/gateway"
	"care-booking/pkg/metrics"
	"care-booking/pkg/notify"
	"care-booking/pkg/utils"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the outbox worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return serve(cmd.Context(), config, logger)
		},
	}
}

func serve(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)
	bookingMetrics := metrics.NewBookingMetrics(nil)

	opts := usecase.Options{Metrics: bookingMetrics}
	if config.Razorpay.KeyID != "" && config.Razorpay.KeySecret != "" {
		opts.Gateway = gateway.NewRazorpayClient(gateway.Config{
			KeyID:     config.Razorpay.KeyID,
			KeySecret: config.Razorpay.KeySecret,
			BaseURL:   config.Razorpay.BaseURL,
		})
	} else {
		logger.Warn("Razorpay credentials missing, payment sessions disabled")
	}

	if config.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, callback replay guard disabled", zap.Error(err))
		} else {
			defer client.Close()
			opts.Guard = cache.NewCallbackGuard(client, 0)
		}
	}

	dispatcher, err := buildDispatcher(ctx, config, logger)
	if err != nil {
		return err
	}

	outbox := worker.NewOutboxWorker(repos.Outbox, dispatcher, bookingMetrics, logger).
		WithMaxAttempts(config.Outbox.MaxAttempts).
		WithBaseDelay(config.Outbox.BaseDelay).
		WithInterval(config.Outbox.Interval).
		WithBatchSize(config.Outbox.BatchSize)

	app := wire.Wiring(repos, config, opts, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		outbox.Run(workerCtx)
	}()

	err = runHTTP(ctx, app.Router, config.App.Port, logger)

	stopWorker()
	<-workerDone
	return err
}

// runHTTP serves until ctx is cancelled, then drains in-flight requests.
func runHTTP(ctx context.Context, router *chi.Mux, port string, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// buildDispatcher registers a transport for every configured channel. Channels
// without credentials fall back to the log transport.
func buildDispatcher(ctx context.Context, config *utils.Config, logger *zap.Logger) (*notify.Dispatcher, error) {
	dispatcher := notify.NewDispatcher(notify.NewLogTransport(logger))

	if sms := notify.NewTwilioSMSTransport(notify.TwilioConfig{
		AccountSID: config.Twilio.AccountSID,
		AuthToken:  config.Twilio.AuthToken,
		From:       config.Twilio.From,
	}, logger); sms != nil {
		dispatcher.Register(notify.ChannelSMS, sms)
	}

	emailCfg := notify.EmailConfig{FromEmail: config.Email.FromEmail, FromName: config.Email.FromName}
	switch config.Email.Provider {
	case "sendgrid":
		if email := notify.NewSendGridEmailTransport(config.Email.SendGridAPIKey, emailCfg, logger); email != nil {
			dispatcher.Register(notify.ChannelEmail, email)
		} else {
			logger.Warn("SENDGRID_API_KEY missing, email goes to the log")
		}
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Email.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		dispatcher.Register(notify.ChannelEmail, notify.NewSESEmailTransport(sesv2.NewFromConfig(awsCfg), emailCfg, logger))
	}

	if crm := notify.NewWebhookTransport(config.Webhook.CRMURL, config.Webhook.Timeout, logger); crm != nil {
		dispatcher.Register(notify.ChannelCRM, crm)
	}

	return dispatcher, nil
}
