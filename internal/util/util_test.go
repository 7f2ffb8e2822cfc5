package util

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestWeekStart(t *testing.T) {
	// 2025-01-08 is a Wednesday
	wed := time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), WeekStart(wed))

	sun := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), WeekStart(sun))

	mon := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mon, WeekStart(mon))
}

func TestMonthsAgo(t *testing.T) {
	now := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), MonthsAgo(now, 3))
}

func TestDateIn(t *testing.T) {
	// 16:00 UTC is already the next day in Seoul
	utc := time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC)
	d := DateIn(utc, Seoul())
	assert.Equal(t, 2, d.Day())
	assert.Equal(t, 0, d.Hour())
}

func TestDecodeKorean(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("미국 USD")
	require.NoError(t, err)

	out, err := io.ReadAll(DecodeKorean(strings.NewReader(encoded), "text/html; charset=EUC-KR"))
	require.NoError(t, err)
	assert.Equal(t, "미국 USD", string(out))

	plain, err := io.ReadAll(DecodeKorean(strings.NewReader("hello"), "application/json"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}
