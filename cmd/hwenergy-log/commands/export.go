package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// RunExport converts the log file at path into format ("jsonl" or
// "csv"), writing to output or stdout when output is empty.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	w := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	}
	return fmt.Errorf("unknown format %q (want jsonl or csv)", format)
}

// exportJSONL writes one JSON object per line, the full event each time.
func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

var csvHeader = []string{"timestamp", "client_id", "direction", "source", "category", "serial", "type", "seq", "status"}

// exportCSV flattens events to one row each. Payload details beyond the
// exchange sequence and status are dropped; jsonl keeps everything.
func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(event log.Event) []string {
	var seq, status string
	if ex := event.Exchange; ex != nil {
		seq = strconv.FormatUint(ex.Seq, 10)
		if ex.Status != 0 {
			status = strconv.Itoa(ex.Status)
		}
	}
	return []string{
		event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		event.ClientID,
		event.Direction.String(),
		event.Source.String(),
		event.Category.String(),
		event.Serial,
		strings.ToLower(eventLabel(event)),
		seq,
		status,
	}
}
