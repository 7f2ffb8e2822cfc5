package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/internal/alphavantage"
	"github.com/epeers/fintrack/internal/database"
	"github.com/epeers/fintrack/internal/importer"
	"github.com/epeers/fintrack/internal/naver"
)

// env is what every import command needs: settings, a database and the data-source clients.
type env struct {
	cfg *config.Config
	imp *config.ImportConfig
	db  *database.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)

	imp, err := config.LoadImport(cfg.ImportConfigPath)
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &env{cfg: cfg, imp: imp, db: db}, nil
}

func (e *env) close() { e.db.Close() }

func (e *env) naver() *naver.Client {
	return naver.NewClientWithBaseURL(e.imp.Naver.FinanceURL, e.imp.Naver.APIURL)
}

func (e *env) alphaVantage() (*alphavantage.Client, error) {
	if err := e.cfg.RequireAVKey(); err != nil {
		return nil, err
	}
	return alphavantage.NewClientWithBaseURL(e.cfg.AVKey, e.imp.AlphaVantage.BaseURL), nil
}

func (e *env) options() importer.Options {
	return importer.Options{Pause: e.imp.Pause}
}

// report prints the run summary and maps it to an exit status:
// failure when the subjects could not be loaded or every subject failed.
func report(sum importer.Summary, err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(sum.String())
	for _, f := range sum.Failures {
		fmt.Printf("  %s: %s\n", f.Subject, f.Error)
	}
	if sum.AllFailed() {
		return 1
	}
	return 0
}

// splitList parses a comma separated flag value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseYears parses a comma separated list of years
func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range splitList(s) {
		y, err := strconv.Atoi(part)
		if err != nil || y < 1900 || y > 9999 {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}
