package walker

import (
	"bufio"
	"errors"
	"io"
	"os"
)

var statPath = os.Stat

// CountLines counts lines the way a line-array read does: a trailing
// fragment without a newline is one more line, an empty file has none.
// Unreadable files count as zero.
func CountLines(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	lines, _ := countReaderLines(file)
	return lines
}

// TotalLines sums CountLines over paths.
func TotalLines(paths []string) int {
	return SumLines(Records(paths))
}

func SumLines(records []FileRecord) int {
	total := 0
	for _, record := range records {
		total += record.Lines
	}
	return total
}

func countReaderLines(reader io.Reader) (int, error) {
	buffered := bufio.NewReader(reader)
	lines := 0
	partial := false
	for {
		chunk, err := buffered.ReadSlice('\n')
		switch {
		case err == nil:
			lines++
			partial = false
		case errors.Is(err, bufio.ErrBufferFull):
			// long line, keep reading until its newline
			partial = true
		case errors.Is(err, io.EOF):
			if partial || len(chunk) > 0 {
				lines++
			}
			return lines, nil
		default:
			return lines, err
		}
	}
}
