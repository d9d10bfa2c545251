package sheets

import "context"

// ValuesService is the raw spreadsheet surface the ledger is built on.
// This interface enables mocking and testing of sheet operations.
type ValuesService interface {
	// Get reads all cell values in the given A1 range.
	Get(ctx context.Context, readRange string) ([][]string, error)

	// Append appends one row after the last non-empty row of the range.
	Append(ctx context.Context, writeRange string, row []string) error
}
