package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/connectflow/internal/config"
	fileGateway "github.com/dtroode/connectflow/internal/gateway/file"
	memoryGateway "github.com/dtroode/connectflow/internal/gateway/memory"
	postgresGateway "github.com/dtroode/connectflow/internal/gateway/postgres"
	"github.com/dtroode/connectflow/internal/logger"
	"github.com/dtroode/connectflow/internal/model"
	"github.com/dtroode/connectflow/internal/service"
	"github.com/dtroode/connectflow/internal/store"
	storage "github.com/dtroode/connectflow/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// core is the boundary handed to the presentation layer: every UI event
// goes through one of these services and nothing else touches the
// stores.
type core struct {
	Account       *service.Account
	Social        *service.Social
	Search        *service.Search
	Conversations *service.Conversations
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	gateway, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize persistence gateway", "error", err)
	}
	defer closeGateway()

	identities := store.NewIdentity(gateway)
	requests := store.NewRequests(gateway)
	conversations := store.NewConversations(gateway)
	sessions := store.NewSession(gateway)

	if err := store.Bootstrap(ctx, identities, requests, conversations, logger); err != nil {
		logger.Fatal("failed to bootstrap stores", "error", err)
	}

	avatars, err := newAvatarStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize avatar storage", "error", err)
	}

	c := core{
		Account:       service.NewAccount(identities, sessions, avatars, logger),
		Social:        service.NewSocial(identities, requests, logger),
		Search:        service.NewSearch(identities),
		Conversations: service.NewConversations(identities, conversations, logger),
	}

	if user, err := c.Account.RestoreSession(ctx); err == nil {
		logger.Info("session restored", "handle", user.Handle)
	}

	logger.Info("core initialized", "backend", cfg.Store.Backend, "users", identities.Len())
	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, flush := range []func(context.Context) error{identities.Flush, requests.Flush, conversations.Flush} {
		if err := flush(shutdownCtx); err != nil {
			logger.Error("error during final flush", "error", err)
		}
	}
	logger.Info("shutdown complete")
}

func newGateway(ctx context.Context, cfg *config.Config) (model.Gateway, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return memoryGateway.New(), func() {}, nil
	case "file":
		gw, err := fileGateway.New(cfg.Store.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() {}, nil
	case "postgres":
		gw, err := postgresGateway.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newAvatarStorage(ctx context.Context, cfg *config.Config) (model.Storage, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
