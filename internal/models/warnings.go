package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = source records dropped during transform, W2xxx = subject selection.
type WarningCode string

const (
	WarnIncompleteBar    WarningCode = "W1001" // daily bar missing one of open/high/low/close/volume
	WarnUnparseableDate  WarningCode = "W1002" // date text matched none of the known layouts
	WarnUnparseableValue WarningCode = "W1003" // amount or rate text could not be parsed
	WarnDuplicateTicker  WarningCode = "W2001" // listing returned a ticker twice; first one kept
	WarnUnknownTicker    WarningCode = "W2002" // requested ticker not present in the reference table
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
