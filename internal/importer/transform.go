package importer

import (
	"context"

	"github.com/epeers/fintrack/internal/models"
)

// rawBar is the text form of a daily bar shared by every chart source
type rawBar struct {
	Date, Open, High, Low, Close, Volume string
}

// rawDividend is the text form of a distribution shared by every dividend source.
// PaymentDate and Taxable are optional.
type rawDividend struct {
	RecordDate, PaymentDate, Amount, Taxable string
}

// toBars converts source bars for etfID. Bars missing any OHLCV field or carrying an unparseable
// number are dropped with a warning. A bar whose date cannot be parsed is kept with a zero date so
// the merge counts it as skipped. Bars outside w are dropped silently.
func toBars(ctx context.Context, etfID int64, raws []rawBar, w Window) []models.DailyBar {
	bars := make([]models.DailyBar, 0, len(raws))
	for _, r := range raws {
		if r.Open == "" || r.High == "" || r.Low == "" || r.Close == "" || r.Volume == "" {
			AddWarning(ctx, models.WarnIncompleteBar, "bar %q dropped: missing open/high/low/close/volume", r.Date)
			continue
		}

		open, err1 := ParseAmount(r.Open)
		high, err2 := ParseAmount(r.High)
		low, err3 := ParseAmount(r.Low)
		closePrice, err4 := ParseAmount(r.Close)
		volume, err5 := ParseAmount(r.Volume)
		if err := firstErr(err1, err2, err3, err4, err5); err != nil {
			AddWarning(ctx, models.WarnUnparseableValue, "bar %q dropped: %v", r.Date, err)
			continue
		}

		date, err := ParseDate(r.Date)
		if err != nil {
			AddWarning(ctx, models.WarnUnparseableDate, "bar skipped: %v", err)
		} else if !w.Contains(date) {
			continue
		}

		bars = append(bars, models.DailyBar{
			ETFID:  etfID,
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume.IntPart(),
		})
	}
	return bars
}

// toDividends converts source distributions for etfID, keeping record dates in years.
// Unparseable record dates are kept with a zero date so the merge counts them as skipped;
// unparseable amounts drop the row.
func toDividends(ctx context.Context, etfID int64, raws []rawDividend, years []int) []models.ETFDividend {
	divs := make([]models.ETFDividend, 0, len(raws))
	for _, r := range raws {
		amount, err := ParseAmount(r.Amount)
		if err != nil {
			AddWarning(ctx, models.WarnUnparseableValue, "dividend %q dropped: %v", r.RecordDate, err)
			continue
		}

		record, err := ParseDate(r.RecordDate)
		if err != nil {
			AddWarning(ctx, models.WarnUnparseableDate, "dividend skipped: record date: %v", err)
		} else if !InYears(record, years) {
			continue
		}

		d := models.ETFDividend{ETFID: etfID, RecordDate: record, DividendAmount: amount}
		if r.PaymentDate != "" {
			if pay, err := ParseDate(r.PaymentDate); err == nil {
				d.PaymentDate = &pay
			} else {
				AddWarning(ctx, models.WarnUnparseableDate, "dividend %q: payment date: %v", r.RecordDate, err)
			}
		}
		if r.Taxable != "" {
			if taxable, err := ParseAmount(r.Taxable); err == nil {
				d.TaxableAmount = &taxable
			} else {
				AddWarning(ctx, models.WarnUnparseableValue, "dividend %q: taxable amount: %v", r.RecordDate, err)
			}
		}
		divs = append(divs, d)
	}
	return divs
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
