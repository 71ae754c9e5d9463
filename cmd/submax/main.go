package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lucasjlepore/submax"
	"github.com/lucasjlepore/submax/export"
	"github.com/lucasjlepore/submax/fitsource"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("submax: ")

	cfg, err := parseConfig(os.Args[1:], os.LookupEnv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Print(err)
		os.Exit(2)
	}

	rec, err := fitsource.DecodeFile(cfg.path)
	if err != nil {
		log.Fatalf("read %s: %v", cfg.path, err)
	}

	mode := cfg.mode
	var testDay time.Time
	if len(rec.Records) > 0 {
		testDay = rec.Records[0].Timestamp
	}
	targetHR := resolveTargetHR(cfg, mode, testDay)

	res, err := submax.Analyze(submax.Input{
		Records:  rec.Records,
		Laps:     rec.Laps,
		Mode:     mode,
		TargetHR: targetHR,
		FileName: rec.FileName,
	})
	var perr *submax.ProtocolError
	if errors.As(err, &perr) {
		log.Printf("%s test failed: %v", mode, perr.Err)
		if perr.Hint != "" {
			log.Printf("hint: %s", perr.Hint)
		}
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	if cfg.outDir != "" {
		out, err := export.Write(res, export.Options{
			OutDir:    cfg.outDir,
			Format:    cfg.format,
			Overwrite: cfg.overwrite,
		})
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		log.Printf("wrote %s and %s (%d rows)", out.ResultPath, out.RowsPath, out.RowCount)
	}

	if cfg.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("json encode failed: %v", err)
		}
		return
	}
	fmt.Println(buildNotes(res))
}
