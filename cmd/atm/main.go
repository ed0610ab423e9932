package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/branch-atm-ledger/internal/bank"
	"github.com/branch-atm-ledger/internal/config"
	"github.com/branch-atm-ledger/internal/logger"
	"github.com/branch-atm-ledger/internal/platform/clock"
	"github.com/branch-atm-ledger/internal/platform/security"
)

func main() {
	var seeds seedList
	configName := flag.String("config", "atm", "name of the .env file in ./configs")
	flag.Var(&seeds, "open", "open an account before serving, as number:secret:balance:kind[:overdraft] (repeatable)")
	flag.Parse()

	// Cancelled on SIGINT/SIGTERM so the driver stops reading
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize configuration
	cfg, err := config.LoadConfig(*configName)
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr, the screen goes to stdout
	log := logger.NewLoggerWithWriter(cfg, os.Stderr)

	log.Info("Starting ATM",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"ledger_backend", cfg.Ledger.Backend,
		"journal_backend", cfg.Journal.Backend,
	)

	store, closeStore, err := openLedgerStore(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open ledger store", "error", err)
		os.Exit(1)
	}

	journalRepo, closeJournal, err := openJournal(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open journal", "error", err)
		closeStore(appCtx)
		os.Exit(1)
	}

	verifier, err := security.NewBcryptVerifier(cfg.Security.BcryptCost)
	if err != nil {
		log.Error("Failed to initialize credential verifier", "error", err)
		os.Exit(1)
	}

	b := bank.NewBank(log, store, journalRepo, verifier, clock.System{}, bank.Options{
		MaxAccounts: cfg.Bank.MaxAccounts,
	})
	if err := b.Load(appCtx); err != nil {
		log.Error("Failed to load accounts", "error", err)
		os.Exit(1)
	}

	for _, seed := range seeds {
		if !b.OpenAccount(appCtx, seed.number, seed.secret, seed.balance, seed.kind, seed.overdraft) {
			log.Warn("Account not opened", "account_number", seed.number)
		}
	}

	// The driver blocks on stdin, so it runs apart from signal handling
	driver := NewDriver(os.Stdin, os.Stdout, b, log, cfg.Bank.MaxOverdraftLimit)
	errChan := make(chan error, 1)
	go func() {
		errChan <- driver.Run(appCtx)
	}()

	select {
	case <-appCtx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		if err != nil {
			log.Error("ATM stopped with error", "error", err)
		}
	}

	// Graceful shutdown sequence
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	b.Logout()
	closeJournal(shutdownCtx)
	closeStore(shutdownCtx)

	log.Info("ATM shutdown completed")
}
