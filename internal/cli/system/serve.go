package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/config"
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/events"
	"github.com/julianstephens/keepstreak/internal/httpapi"
	"github.com/julianstephens/keepstreak/internal/keyring"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

type ServeCmd struct {
	ServerConfig string `name:"server-config" type:"path" env:"KEEPSTREAK_SERVER_CONFIG" help:"Path to the YAML server configuration."`
	Addr         string `help:"Listen address, overriding the configuration."`
}

// keyringSecret reads the JWT secret from the OS keyring. A missing secret
// or an unavailable keyring yields "".
func keyringSecret() (string, error) {
	secret, err := keyring.Get(keyring.SecretJWTSecret)
	if err != nil {
		return "", nil
	}
	return secret, nil
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(c.ServerConfig, keyringSecret)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Log.Debug,
		ConfigDir: cli.ExpandPath(constants.DefaultConfigDir),
		Console:   true,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := ctx.Store
	if cfg.Database.DSN != "" {
		store, err = cli.OpenStore(cfg.Database.DSN, true)
		if err != nil {
			return err
		}
		defer store.Close()
	}
	if err := store.Load(); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.AMQP)
	if err != nil {
		return err
	}
	defer publisher.Close()

	verifier, err := httpapi.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	svc := tracker.New(store,
		tracker.WithEvaluationTimeout(cfg.Evaluation.Timeout),
		tracker.WithPublisher(publisher),
	)
	router := httpapi.NewRouter(svc, verifier, httpapi.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	logger.Info("Starting HTTP API", "addr", srv.Addr, "store", store.GetConfigPath(), "auth", cfg.Auth.Mode)
	ctx.Printf("Serving the keepstreak API on %s\n", srv.Addr)
	return httpapi.Run(context.Background(), srv, svc.Wait)
}

// newPublisher connects to the broker when a URL is configured
func newPublisher(cfg config.AMQPConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		return events.Noop{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}
	return p, nil
}

type TokenCmd struct {
	ServerConfig string        `name:"server-config" type:"path" env:"KEEPSTREAK_SERVER_CONFIG" help:"Path to the YAML server configuration."`
	Subject      string        `arg:"" optional:"" help:"User id to issue the token for (default: --user)."`
	TTL          time.Duration `help:"Token lifetime." default:"24h"`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(c.ServerConfig, keyringSecret)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("no jwt secret configured; set auth.jwt_secret, KEEPSTREAK_JWT_SECRET or 'keepstreak keyring set --jwt'")
	}

	subject := c.Subject
	if subject == "" {
		subject = ctx.UserID
	}
	token, err := httpapi.SignToken(cfg.Auth.JWTSecret, subject, c.TTL)
	if err != nil {
		return err
	}
	ctx.Println(token)
	return nil
}
