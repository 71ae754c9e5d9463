//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/submax"
	"github.com/lucasjlepore/submax/export"
	"github.com/lucasjlepore/submax/fitsource"
)

func main() {
	js.Global().Set("analyzeSubmax", js.FuncOf(analyzeSubmax))
	select {}
}

func analyzeSubmax(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("fit file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read FIT bytes from JS input")
	}

	rec, err := fitsource.DecodeBytes(fileBytes, getString(optsArg, "source_file_name", "input.fit"))
	if err != nil {
		return failure(err.Error())
	}

	mode := submax.Mode(getString(optsArg, "mode", ""))
	targetHR := getFloat(optsArg, "target_hr")
	if age := getFloat(optsArg, "age"); targetHR <= 0 && age > 0 {
		targetHR = submax.TargetHRForAge(mode, int(age))
	}

	res, err := submax.Analyze(submax.Input{
		Records:  rec.Records,
		Laps:     rec.Laps,
		Mode:     mode,
		TargetHR: targetHR,
		FileName: rec.FileName,
	})
	if err != nil {
		out := failure(err.Error())
		var perr *submax.ProtocolError
		if errors.As(err, &perr) {
			out["hint"] = perr.Hint
		}
		return out
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return failure(fmt.Sprintf("encode result: %v", err))
	}
	files, err := export.Artifacts(res, getString(optsArg, "format", "csv"))
	if err != nil {
		return failure(err.Error())
	}
	zipBytes, err := zipArtifacts(files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	return map[string]any{
		"ok":         true,
		"result":     string(resultJSON),
		"compliance": string(res.Summary.Compliance),
		"zip":        payload,
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}
