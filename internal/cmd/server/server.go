// Package server wires configuration into the quiz funnel process.
package server

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/leadfunnel/personaquiz/internal/lead"
	"github.com/leadfunnel/personaquiz/internal/notify"
	"github.com/leadfunnel/personaquiz/internal/partner"
	"github.com/leadfunnel/personaquiz/internal/platform/config"
	"github.com/leadfunnel/personaquiz/internal/platform/otel"
	"github.com/leadfunnel/personaquiz/internal/services/web"
	"github.com/leadfunnel/personaquiz/internal/storage"
	"github.com/leadfunnel/personaquiz/internal/storage/sqlite"
)

const (
	defaultHTTPAddr = "localhost:8080"
	defaultDBPath   = "personaquiz.db"
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr string `env:"PERSONAQUIZ_HTTP_ADDR"`
	DBPath   string `env:"PERSONAQUIZ_DB_PATH"`

	AdminPassword string `env:"PERSONAQUIZ_ADMIN_PASSWORD"`
	AdminSecret   string `env:"PERSONAQUIZ_ADMIN_SECRET"`

	LineChannelToken string `env:"PERSONAQUIZ_LINE_CHANNEL_TOKEN"`
	LineUserID       string `env:"PERSONAQUIZ_LINE_USER_ID"`
	LineAddHandle    string `env:"PERSONAQUIZ_LINE_ADD_HANDLE"`
	PushDisabled     bool   `env:"PERSONAQUIZ_PUSH_DISABLED"`

	// MasterName seeds a minimal roster on first boot against an empty
	// database.
	MasterName string `env:"PERSONAQUIZ_MASTER_NAME"`
}

// ParseConfig loads environment configuration and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the quiz funnel server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "personaquiz")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open table store: %w", err)
	}
	defer store.Close()

	if err := ensureRoster(ctx, store, cfg.MasterName); err != nil {
		return fmt.Errorf("bootstrap roster: %w", err)
	}
	roster, err := partner.LoadRoster(ctx, store)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	var sink notify.Sink = notify.NewLineSink()
	if cfg.PushDisabled {
		sink = notify.NopSink{}
	}
	recorder := lead.NewRecorder(store, sink, lead.MasterContact{
		Token: cfg.LineChannelToken,
		To:    cfg.LineUserID,
	}, log.Default())

	secret := []byte(cfg.AdminSecret)
	if len(secret) == 0 {
		// Grants are short-lived, so a per-process secret only costs
		// report logins a restart.
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		log.Printf("admin grant secret not configured, using a per-process secret")
	}

	server, err := web.NewServer(web.Config{
		Addr:             cfg.HTTPAddr,
		Roster:           roster,
		Store:            store,
		Recorder:         recorder,
		AdminPassword:    cfg.AdminPassword,
		AdminSecret:      secret,
		MasterLineHandle: cfg.LineAddHandle,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

// ensureRoster seeds the roster tables on first boot so a fresh database
// can serve sessions. Existing tables are left untouched.
func ensureRoster(ctx context.Context, store storage.TableStore, masterName string) error {
	if masterName == "" {
		masterName = "顧問"
	}
	columns := []string{
		"ref", "name", "title", "img_url",
		"line_id", "line_search_id", "line_token", "password",
	}
	if _, err := store.ReadTable(ctx, partner.TableMaster); storage.IsNotFound(err) {
		table := storage.Table{
			Columns: columns,
			Rows:    [][]string{{"master", masterName, "", "", "", "", "", ""}},
		}
		if err := store.WriteTable(ctx, partner.TableMaster, table); err != nil {
			return err
		}
	}
	if _, err := store.ReadTable(ctx, partner.TableTeam); storage.IsNotFound(err) {
		if err := store.WriteTable(ctx, partner.TableTeam, storage.Table{Columns: columns}); err != nil {
			return err
		}
	}
	return nil
}
