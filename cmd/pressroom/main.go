package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"pressroom/adapter/mail"
	"pressroom/adapter/memory"
	"pressroom/adapter/postgres"
	"pressroom/app"
	"pressroom/domain"
	"pressroom/internal/config"
	"pressroom/internal/httpapi"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "--help", "-h", "help":
		printHelp()
		return
	case "serve":
		err = cmdServe(args)
	case "seed":
		err = cmdSeed(args)
	case "subscribers":
		err = cmdSubscribers(args)
	case "stats":
		err = cmdStats(args)
	default:
		fmt.Printf("unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(cmd + " failed: " + err.Error())
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`Usage:
  pressroom COMMAND [OPTIONS]

Commands:
   serve           run the HTTP API [--memory]
   seed            create the default admin and sample posts
   subscribers     list subscribers
   stats           show newsletter and subscriber counters
   help            show this help
`)
}

func cmdServe(args []string) error {
	fset := flag.NewFlagSet("serve", flag.ContinueOnError)
	var inMemory bool
	fset.BoolVar(&inMemory, "memory", false, "use in-memory storage instead of Postgres")
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var (
		subsRepo  domain.SubscriberRepository
		postsRepo domain.NewsletterRepository
	)
	if inMemory {
		store := memory.NewStore()
		subsRepo, postsRepo = store, store.Newsletters()
	} else {
		db, err := postgres.Open(cfg.PostgresURL())
		if err != nil {
			return err
		}
		defer db.Close()
		repo := postgres.New(db)
		if err := repo.Ensure(context.Background()); err != nil {
			return fmt.Errorf("db ensure failed: %w", err)
		}
		subsRepo, postsRepo = repo, repo.Newsletters()
	}

	mailer := mail.New(mail.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	}, logger)

	subs := app.NewSubscriptions(subsRepo, mailer, cfg.BaseURL, logger)
	pubs := app.NewPublications(postsRepo)
	api := httpapi.New(subs, pubs, cfg.APIToken, logger)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Handler()}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("listening", "addr", cfg.Addr, "memory", inMemory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("graceful shutdown complete")
	return nil
}

func cmdSubscribers(args []string) error {
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	subs, err := repo.List(context.Background())
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Email", "Name", "Active", "Confirmed", "Created"})
	for _, s := range subs {
		table.Append([]string{
			s.Email,
			s.Name,
			strconv.FormatBool(s.Active),
			strconv.FormatBool(s.Confirmed),
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}

func cmdStats(args []string) error {
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := context.Background()
	totalNews, err := repo.Newsletters().Count(ctx, false)
	if err != nil {
		return err
	}
	published, err := repo.Newsletters().Count(ctx, true)
	if err != nil {
		return err
	}
	totalSubs, err := repo.Count(ctx, false)
	if err != nil {
		return err
	}
	activeSubs, err := repo.Count(ctx, true)
	if err != nil {
		return err
	}

	fmt.Printf("Newsletters: %d total, %d published, %d drafts\n", totalNews, published, totalNews-published)
	fmt.Printf("Subscribers: %d total, %d active\n", totalSubs, activeSubs)
	return nil
}

func openRepo() (*postgres.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.Open(cfg.PostgresURL())
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.New(db)
	if err := repo.Ensure(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { _ = db.Close() }, nil
}
