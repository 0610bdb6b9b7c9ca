package report

import (
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const downloadFilePrefix = "d7audit-"

//go:embed schema/results.schema.json
var schemaFS embed.FS

// JSONSchema returns the schema the JSON format conforms to.
func JSONSchema() []byte {
	data, err := schemaFS.ReadFile("schema/results.schema.json")
	if err != nil {
		return nil
	}
	return data
}

// DownloadFileName names a saved report after the day it was generated,
// e.g. d7audit-14-10-2026.txt.
func DownloadFileName(now time.Time, format Format) string {
	extension := ".txt"
	if format == FormatJSON {
		extension = ".json"
	}
	return downloadFilePrefix + now.Format("02-01-2006") + extension
}

// RoundPercent rounds to two decimals, half away from zero. The scaled
// value is first trimmed to nine decimals so 1.005 rounds up to 1.01 even
// though 1.005*100 is stored as 100.49999999999999.
func RoundPercent(value float64) float64 {
	scaled := value * 100
	if trimmed, err := strconv.ParseFloat(strconv.FormatFloat(scaled, 'f', 9, 64), 64); err == nil {
		scaled = trimmed
	}
	return math.Round(scaled) / 100
}

// FormatPercent renders a rounded percentage with at least one decimal
// ("10.0%", "12.35%"). Zero renders as "0%".
func FormatPercent(value float64) string {
	if value == 0 {
		return "0%"
	}
	text := strconv.FormatFloat(RoundPercent(value), 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text = fmt.Sprintf("%s.0", text)
	}
	return text + "%"
}
