package export

// Options configures where and how a result is written.
type Options struct {
	OutDir    string
	Format    string // parquet|csv
	Overwrite bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir  string `json:"output_dir"`
	ResultPath string `json:"result_path"`
	RowsPath   string `json:"rows_path"`
	RowCount   int    `json:"row_count"`
}

// segmentRow is one bike segment in tabular form.
type segmentRow struct {
	SegmentIndex  int32   `parquet:"name=segment_index, type=INT32"`
	Label         string  `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartTS       string  `parquet:"name=start_ts, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndTS         string  `parquet:"name=end_ts, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedStartS float64 `parquet:"name=elapsed_start_s, type=DOUBLE"`
	ElapsedEndS   float64 `parquet:"name=elapsed_end_s, type=DOUBLE"`
	SampleCount   int64   `parquet:"name=sample_count, type=INT64"`
	HRAvg         float64 `parquet:"name=hr_avg, type=DOUBLE"`
	PowerAvg      float64 `parquet:"name=power_avg, type=DOUBLE"`
	CadAvg        float64 `parquet:"name=cad_avg, type=DOUBLE"`
	EffPowerPerHR float64 `parquet:"name=eff_power_per_hr, type=DOUBLE"`
}

// mileRow is one run test mile in tabular form.
type mileRow struct {
	MileIndex     int32   `parquet:"name=mile_index, type=INT32"`
	LapIndex      int32   `parquet:"name=lap_index, type=INT32"`
	StartTS       string  `parquet:"name=start_ts, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndTS         string  `parquet:"name=end_ts, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedStartS float64 `parquet:"name=elapsed_start_s, type=DOUBLE"`
	ElapsedEndS   float64 `parquet:"name=elapsed_end_s, type=DOUBLE"`
	SplitTimeS    float64 `parquet:"name=split_time_s, type=DOUBLE"`
	SplitTimeMMSS string  `parquet:"name=split_time_mmss, type=BYTE_ARRAY, convertedtype=UTF8"`
	SampleCount   int64   `parquet:"name=sample_count, type=INT64"`
	HRAvg         float64 `parquet:"name=hr_avg, type=DOUBLE"`
	CadAvg        float64 `parquet:"name=cad_avg, type=DOUBLE"`
}
