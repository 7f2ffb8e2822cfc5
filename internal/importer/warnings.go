package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/fintrack/internal/models"
)

// maxWarningMessages caps the messages kept per subject. Counts stay exact past the cap.
const maxWarningMessages = 50

type warningLogKey struct{}

// WarningLog records the rows dropped or altered while one subject is transformed
type WarningLog struct {
	mu       sync.Mutex
	messages []models.Warning
	counts   map[models.WarningCode]int
	total    int
}

// WithWarningLog returns a context that routes AddWarning into a fresh log
func WithWarningLog(ctx context.Context) (context.Context, *WarningLog) {
	wl := &WarningLog{counts: make(map[models.WarningCode]int)}
	return context.WithValue(ctx, warningLogKey{}, wl), wl
}

// AddWarning records a warning in the log carried by ctx. Without a log it does nothing,
// so transforms can be called outside a run.
func AddWarning(ctx context.Context, code models.WarningCode, format string, args ...any) {
	wl, _ := ctx.Value(warningLogKey{}).(*WarningLog)
	if wl == nil {
		return
	}
	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.total++
	wl.counts[code]++
	if len(wl.messages) < maxWarningMessages {
		wl.messages = append(wl.messages, models.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
	}
}

// Warnings returns the kept messages in the order they were raised
func (wl *WarningLog) Warnings() []models.Warning {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return append([]models.Warning(nil), wl.messages...)
}

// Count returns how many warnings with code were raised
func (wl *WarningLog) Count(code models.WarningCode) int {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.counts[code]
}

// Total returns how many warnings were raised, including those whose message was not kept
func (wl *WarningLog) Total() int {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.total
}
