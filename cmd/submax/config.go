package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasjlepore/submax"
)

const defaultEnvFile = ".env"

type config struct {
	path      string
	mode      submax.Mode
	targetHR  float64
	age       int
	birthDate time.Time
	jsonOut   bool
	outDir    string
	format    string
	overwrite bool
	envFile   string
}

// parseConfig reads flags, then fills anything left unset from the process
// environment and finally from the .env file.
func parseConfig(args []string, lookupEnv func(string) (string, bool), usageOut io.Writer) (config, error) {
	var (
		cfg       config
		mode      string
		birthDate string
	)

	fset := flag.NewFlagSet("submax", flag.ContinueOnError)
	fset.SetOutput(usageOut)
	fset.StringVar(&mode, "mode", "", "Test mode: bike|run (default: SUBMAX_MODE)")
	fset.Float64Var(&cfg.targetHR, "target-hr", 0, "Target heart rate in bpm (bike test)")
	fset.IntVar(&cfg.age, "age", 0, "Athlete age; target is 170-age (bike) or 180-age (run)")
	fset.StringVar(&birthDate, "birth-date", "", "Athlete birth date YYYY-MM-DD; age is taken on the test date")
	fset.BoolVar(&cfg.jsonOut, "json", false, "Emit the full result as JSON")
	fset.StringVar(&cfg.outDir, "out", "", "Also write result.json and segment/mile rows to this directory")
	fset.StringVar(&cfg.format, "format", "parquet", "Row file format: parquet|csv")
	fset.BoolVar(&cfg.overwrite, "overwrite", false, "Allow writing into non-empty output directories")
	fset.StringVar(&cfg.envFile, "env", defaultEnvFile, "Optional dotenv file with SUBMAX_* defaults")
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "Usage: submax [flags] <file.fit|file.fit.gz>\n")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}
	if fset.NArg() < 1 {
		fset.Usage()
		return cfg, errors.New("missing FIT file argument")
	}
	cfg.path = fset.Arg(0)

	dotenv, err := readDotEnv(cfg.envFile)
	if err != nil {
		return cfg, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		v, ok := dotenv[key]
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	set := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["mode"] {
		mode, _ = lookup("SUBMAX_MODE")
	}
	cfg.mode = submax.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if cfg.mode != submax.ModeBike && cfg.mode != submax.ModeRun {
		fset.Usage()
		return cfg, fmt.Errorf("mode must be bike or run, got %q", mode)
	}
	if v, ok := lookup("SUBMAX_TARGET_HR"); ok && !set["target-hr"] {
		if cfg.targetHR, err = strconv.ParseFloat(v, 64); err != nil {
			return cfg, fmt.Errorf("parse SUBMAX_TARGET_HR: %w", err)
		}
	}
	if v, ok := lookup("SUBMAX_AGE"); ok && !set["age"] {
		if cfg.age, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("parse SUBMAX_AGE: %w", err)
		}
	}
	if !set["birth-date"] {
		birthDate, _ = lookup("SUBMAX_BIRTH_DATE")
	}
	if birthDate != "" {
		if cfg.birthDate, err = time.Parse("2006-01-02", birthDate); err != nil {
			return cfg, fmt.Errorf("parse birth date: %w", err)
		}
	}
	return cfg, nil
}

// readDotEnv returns the values in path. A missing default file is not an
// error; a missing file the user named is.
func readDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultEnvFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

// resolveTargetHR picks the explicit target, then age, then birth date
// evaluated on the test day. Zero means no target.
func resolveTargetHR(cfg config, mode submax.Mode, testDay time.Time) float64 {
	switch {
	case cfg.targetHR > 0:
		return cfg.targetHR
	case cfg.age > 0:
		return submax.TargetHRForAge(mode, cfg.age)
	case !cfg.birthDate.IsZero() && !testDay.IsZero():
		return submax.TargetHRForAge(mode, submax.AgeAt(cfg.birthDate, testDay))
	}
	return 0
}
