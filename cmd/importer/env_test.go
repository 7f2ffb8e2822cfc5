package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/internal/importer"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"069500", "360750"}, splitList(" 069500, ,360750,"))
	assert.Empty(t, splitList(""))
}

func TestParseYears(t *testing.T) {
	years, err := parseYears("2023, 2024")
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, years)

	years, err = parseYears("")
	require.NoError(t, err)
	assert.Empty(t, years)

	_, err = parseYears("2024,last")
	assert.Error(t, err)
	_, err = parseYears("24")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	assert.Equal(t, 1, report(importer.Summary{}, errors.New("no subjects")))
	assert.Equal(t, 0, report(importer.Summary{Job: "usd-krw", Total: 0}, nil))
	assert.Equal(t, 0, report(importer.Summary{Job: "domestic-chart", Total: 2, Succeeded: 1, Failed: 1,
		Failures: []importer.SubjectFailure{{Subject: "069500", Error: "timeout"}}}, nil))
	assert.Equal(t, 1, report(importer.Summary{Job: "domestic-chart", Total: 2, Failed: 2}, nil))
}
