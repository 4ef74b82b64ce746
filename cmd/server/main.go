package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RosterRoyalsServer/internal/adminui"
	"RosterRoyalsServer/internal/auth"
	"RosterRoyalsServer/internal/cloudbet"
	"RosterRoyalsServer/internal/config"
	"RosterRoyalsServer/internal/httpapi"
	"RosterRoyalsServer/internal/logging"
	"RosterRoyalsServer/internal/metrics"
	"RosterRoyalsServer/internal/migrations"
	"RosterRoyalsServer/internal/notifications"
	"RosterRoyalsServer/internal/service"
	"RosterRoyalsServer/internal/store/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	opts := httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		CORSOrigins:    cfg.CORSOrigins,
		MetricsHandler: metrics.Handler(),
		Odds: &service.OddsService{
			Provider: cloudbet.NewClient(cfg.CloudbetBaseURL, cfg.CloudbetAPIKey, cfg.OddsTimeout),
			Logger:   logger,
		},
	}

	if cfg.DBDSN != "" {
		pool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.DBMigrate {
			db := postgres.SQLDB(pool)
			applied, err := migrations.Apply(ctx, db)
			_ = db.Close()
			if err != nil {
				logger.Error("migrations failed", zap.Strings("applied", applied), zap.Error(err))
				return err
			}
			logger.Info("migrations applied", zap.Strings("files", applied))
		}

		users := postgres.NewUsersStore(pool)
		sessions := postgres.NewSessionsStore(pool)
		notificationsStore := postgres.NewNotificationsStore(pool)

		notificationSvc := &service.NotificationService{
			Notifications: notificationsStore,
			Tokens:        postgres.NewNotificationTokensStore(pool),
			Logger:        logger,
		}
		if cfg.PushEnabled() {
			sender, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentialsFile, nil)
			if err != nil {
				return err
			}
			notificationSvc.Sender = sender
			logger.Info("push notifications enabled", zap.String("fcm_project", cfg.FCMProjectID))
		} else {
			logger.Info("push notifications disabled")
		}

		opts.DBPing = pool.Ping
		opts.Auth = &service.AuthService{
			Users:               users,
			Sessions:            sessions,
			Tokens:              auth.NewTokenCodec([]byte(cfg.TokenSecret)),
			TokenTTL:            cfg.TokenTTL,
			GoogleClientID:      cfg.GoogleClientID,
			AppleServiceID:      cfg.AppleServiceID,
			VerifyGoogleIDToken: auth.VerifyGoogleIDToken,
			VerifyAppleIDToken:  auth.VerifyAppleIDToken,
		}
		opts.Users = &service.UsersService{Store: postgres.NewUserSearchStore(pool)}
		opts.Friends = &service.FriendsService{
			Users:       users,
			Friendships: postgres.NewFriendshipsStore(pool),
			Push:        notificationSvc,
		}
		opts.Groups = &service.GroupsService{
			Users:  users,
			Groups: postgres.NewGroupsStore(pool),
			Push:   notificationSvc,
		}
		opts.Notifications = notificationSvc
		opts.Admin = adminui.New(adminui.Opts{
			Logger:       logger,
			Auth:         opts.Auth,
			Admin:        &service.AdminService{Users: postgres.NewAdminUsersStore(pool), Sessions: sessions},
			CookieSecure: cfg.IsProd(),
			TokenTTL:     cfg.TokenTTL,
		})
	} else {
		logger.Warn("APP_DB_DSN not set: /v1 endpoints disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("env", cfg.Env), zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
