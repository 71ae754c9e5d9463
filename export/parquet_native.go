//go:build !js

package export

import (
	"github.com/lucasjlepore/submax"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

func writeParquet(path string, res *submax.TestResult) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := encodeParquet(fw, res); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// MarshalParquet renders the segments or miles of res as a Parquet file in
// memory. Missing values are NaN.
func MarshalParquet(res *submax.TestResult) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := encodeParquet(fw, res); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func encodeParquet(fw source.ParquetFile, res *submax.TestResult) error {
	var (
		schema any
		rows   []any
	)
	if res.Sport == submax.ModeRun {
		schema = new(mileRow)
		for _, r := range mileRows(res.Miles) {
			rows = append(rows, r)
		}
	} else {
		schema = new(segmentRow)
		for _, r := range segmentRows(res.Segments) {
			rows = append(rows, r)
		}
	}

	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
