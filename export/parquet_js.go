//go:build js

package export

import (
	"errors"

	"github.com/lucasjlepore/submax"
)

var errParquetUnavailable = errors.New("parquet output is not available in browser builds; use csv")

func writeParquet(string, *submax.TestResult) error { return errParquetUnavailable }

// MarshalParquet is unavailable under js; use MarshalCSV.
func MarshalParquet(*submax.TestResult) ([]byte, error) { return nil, errParquetUnavailable }
