// @title			Folio Admin API
// @version		1.0
// @description	Portfolio content API with a single-admin session guard and a contact relay.
// @BasePath		/api

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/database"
	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/handler"
	"github.com/kdos/folio/internal/logger"
	"github.com/kdos/folio/internal/metrics"
	"github.com/kdos/folio/internal/repository"
	"github.com/kdos/folio/internal/service"
)

var serveFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Value:   config.DefaultPort,
		Usage:   "HTTP server port",
		EnvVars: []string{"PORT"},
	},
	&cli.StringFlag{
		Name:    "admin-username",
		Usage:   "Administrator username",
		EnvVars: []string{"ADMIN_USERNAME"},
	},
	&cli.StringFlag{
		Name:    "admin-password",
		Usage:   "Administrator password (prefer --admin-password-hash)",
		EnvVars: []string{"ADMIN_PASSWORD"},
	},
	&cli.StringFlag{
		Name:    "admin-password-hash",
		Usage:   "bcrypt hash of the administrator password, see hash-password",
		EnvVars: []string{"ADMIN_PASSWORD_HASH"},
	},
	&cli.BoolFlag{
		Name:    "secure-cookies",
		Value:   true,
		Usage:   "Mark the session cookie Secure (disable only for plain-HTTP development)",
		EnvVars: []string{"SECURE_COOKIES"},
	},
	&cli.DurationFlag{
		Name:    "session-ttl",
		Value:   config.DefaultSessionTTL,
		Usage:   "Admin session lifetime",
		EnvVars: []string{"SESSION_TTL"},
	},
	&cli.IntFlag{
		Name:    "login-rate",
		Value:   config.DefaultLoginRate,
		Usage:   "Login attempts allowed per client per minute",
		EnvVars: []string{"LOGIN_RATE"},
	},
	&cli.IntFlag{
		Name:    "login-burst",
		Value:   config.DefaultLoginBurst,
		Usage:   "Login attempts a client may make back to back",
		EnvVars: []string{"LOGIN_BURST"},
	},
	&cli.BoolFlag{
		Name:    "trust-proxy",
		Usage:   "Take the client address from X-Forwarded-For",
		EnvVars: []string{"TRUST_PROXY"},
	},
	&cli.StringFlag{
		Name:    "resend-api-key",
		Usage:   "Resend API key; contact messages are only logged when empty",
		EnvVars: []string{"RESEND_API_KEY"},
	},
	&cli.StringFlag{
		Name:    "contact-from",
		Value:   config.DefaultContactFrom,
		Usage:   "Sender address of contact emails",
		EnvVars: []string{"CONTACT_FROM"},
	},
	&cli.StringSliceFlag{
		Name:    "contact-to",
		Usage:   "Recipient of contact emails (repeatable)",
		EnvVars: []string{"CONTACT_TO"},
	},
	&cli.DurationFlag{
		Name:    "prune-interval",
		Value:   config.DefaultPruneInterval,
		Usage:   "How often expired sessions are deleted (0 disables)",
		EnvVars: []string{"PRUNE_INTERVAL"},
	},
}

func main() {
	// Flag values fall back to the environment, so .env must be loaded first.
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "folio",
		Usage: "Portfolio content API",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
		}, serveFlags...),
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Flags:  serveFlags,
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: runMigrate,
			},
			{
				Name:   "prune-sessions",
				Usage:  "Delete expired admin sessions",
				Action: runPruneSessions,
			},
			{
				Name:  "seed",
				Usage: "Validate and store skills and projects documents from JSON files",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "skills", Usage: "Path to a skills document"},
					&cli.PathFlag{Name: "projects", Usage: "Path to a projects list"},
				},
				Action: runSeed,
			},
			{
				Name:      "hash-password",
				Usage:     "Print the bcrypt hash of a password read from the argument or stdin",
				ArgsUsage: "[password]",
				Action:    runHashPassword,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func serveConfig(c *cli.Context) config.Config {
	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	return config.Config{
		Port: port,
		Admin: config.AdminConfig{
			Username:     c.String("admin-username"),
			Password:     c.String("admin-password"),
			PasswordHash: c.String("admin-password-hash"),
		},
		Session: config.SessionConfig{
			TTL:           c.Duration("session-ttl"),
			SecureCookies: c.Bool("secure-cookies"),
			PruneInterval: c.Duration("prune-interval"),
		},
		RateLimit: config.RateLimitConfig{
			PerMinute:  c.Int("login-rate"),
			Burst:      c.Int("login-burst"),
			TrustProxy: c.Bool("trust-proxy"),
		},
		Contact: config.ContactConfig{
			ResendAPIKey: c.String("resend-api-key"),
			From:         c.String("contact-from"),
			To:           c.StringSlice("contact-to"),
		},
	}
}

func openDatabase(c *cli.Context) (*database.DB, error) {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return nil, errors.New("database url is required (--database-url or DATABASE_URL)")
	}

	db, err := database.Open(c.Context, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg := serveConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.Session.SecureCookies {
		slog.Warn("session cookie is not marked Secure")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	h := handler.New(db, cfg, m)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	if cfg.Session.PruneInterval > 0 {
		guard := service.NewSessionGuard(repository.NewSessionRepository(db.Pool()), cfg.Admin, cfg.Session.TTL, m)
		go pruneSessions(pruneCtx, guard, cfg.Session.PruneInterval)
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	stopPrune()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// pruneSessions deletes expired sessions every interval until ctx is done.
func pruneSessions(ctx context.Context, guard *service.SessionGuard, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := guard.PruneExpired(ctx)
			if err != nil {
				slog.Error("failed to prune sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("pruned expired sessions", "count", n)
			}
		}
	}
}

func runMigrate(c *cli.Context) error {
	// Open applies pending migrations.
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}

func runPruneSessions(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	guard := service.NewSessionGuard(repository.NewSessionRepository(db.Pool()), config.AdminConfig{}, config.DefaultSessionTTL, metrics.New())
	n, err := guard.PruneExpired(c.Context)
	if err != nil {
		return err
	}

	slog.Info("pruned expired sessions", "count", n)
	return nil
}

func runSeed(c *cli.Context) error {
	skillsPath, projectsPath := c.Path("skills"), c.Path("projects")
	if skillsPath == "" && projectsPath == "" {
		return errors.New("nothing to seed: pass --skills and/or --projects")
	}

	// Parse both files before touching the database.
	var skills *domain.SkillsDocument
	if skillsPath != "" {
		skills = &domain.SkillsDocument{}
		if err := readJSONFile(skillsPath, skills); err != nil {
			return err
		}
	}
	var projects []domain.Project
	if projectsPath != "" {
		if err := readJSONFile(projectsPath, &projects); err != nil {
			return err
		}
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	content := service.NewContentService(repository.NewContentRepository(db.Pool()), service.NewValidator(), metrics.New())

	if skills != nil {
		revision, err := content.PutSkills(c.Context, skills, nil)
		if err != nil {
			return fmt.Errorf("seed skills: %w", err)
		}
		slog.Info("seeded skills", "path", skillsPath, "categories", len(skills.Categories), "revision", revision)
	}
	if projectsPath != "" {
		revision, err := content.PutProjects(c.Context, projects, nil)
		if err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
		slog.Info("seeded projects", "path", projectsPath, "projects", len(projects), "revision", revision)
	}

	return nil
}

func readJSONFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func runHashPassword(c *cli.Context) error {
	password := c.Args().First()
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, hash)
	return nil
}
