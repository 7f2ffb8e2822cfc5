package importer

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/internal/models"
)

// Label is a subject identified only by its name, such as a listing or the exchange-rate series
type Label string

func (l Label) Name() string { return string(l) }

// ETFSubject is one ETF to import data for
type ETFSubject struct {
	models.ETF
}

func (s ETFSubject) Name() string { return s.Ticker }

// ETFSource lists the ETFs a job imports for. *repository.ETFRepository satisfies it.
type ETFSource interface {
	ListByType(ctx context.Context, m models.Market, etfType string) ([]models.ETF, error)
	ListByTickers(ctx context.Context, m models.Market, tickers []string) ([]models.ETF, error)
}

// ETFFilter selects subjects: explicit Tickers win over ETFType, and an empty ETFType means every ETF.
type ETFFilter struct {
	Market  models.Market
	ETFType string
	Tickers []string
}

func selectETFs(ctx context.Context, src ETFSource, f ETFFilter) ([]ETFSubject, error) {
	var (
		etfs []models.ETF
		err  error
	)
	if len(f.Tickers) > 0 {
		etfs, err = src.ListByTickers(ctx, f.Market, f.Tickers)
	} else {
		etfs, err = src.ListByType(ctx, f.Market, f.ETFType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s etfs: %w", f.Market, err)
	}

	if len(f.Tickers) > 0 {
		found := make(map[string]bool, len(etfs))
		for _, e := range etfs {
			found[e.Ticker] = true
		}
		for _, t := range f.Tickers {
			if !found[t] {
				log.WithField("code", models.WarnUnknownTicker).Warnf("%s ticker %s is not in the reference table", f.Market, t)
			}
		}
	}

	subjects := make([]ETFSubject, len(etfs))
	for i, e := range etfs {
		subjects[i] = ETFSubject{e}
	}
	return subjects, nil
}
