package ioingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gnlib"
	"github.com/lexgraph/lexdb/pkg/record"
)

// Loader reads one source file format and streams mapped raw entries
// in batches. Payloads use the normalized field names (headword,
// language, ipa, definition, etymology, pos_tag) so the pipeline never
// needs to know the source format.
type Loader interface {
	Load(
		ctx context.Context,
		path, sourceID string,
		batchSize int,
		fn func([]record.RawRecord) error,
	) error
}

// ForFormat returns the loader for a catalog format.
func ForFormat(format string, log *slog.Logger) (Loader, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &KaikkiLoader{log: log}, nil
	case "csv":
		return &SwadeshLoader{log: log}, nil
	default:
		return nil, FormatError(format)
	}
}

// Lines in Kaikki dumps regularly exceed bufio's default token size.
const maxLineBytes = 16 * 1024 * 1024

// KaikkiLoader reads Kaikki.org parsed Wiktionary dumps, one JSON
// object per line.
type KaikkiLoader struct {
	log *slog.Logger
}

type kaikkiEntry struct {
	Word          string `json:"word"`
	Lang          string `json:"lang"`
	LangCode      string `json:"lang_code"`
	POS           string `json:"pos"`
	EtymologyText string `json:"etymology_text"`
	Sounds        []struct {
		IPA string `json:"ipa"`
	} `json:"sounds"`
	Senses []struct {
		Glosses []string `json:"glosses"`
	} `json:"senses"`
}

// Load streams mapped entries from a JSONL file. Lines that are not
// valid JSON are logged and skipped; entries without a headword or a
// language are skipped silently, matching the shape of Kaikki dumps
// where such lines are redirects and stubs.
func (l *KaikkiLoader) Load(
	ctx context.Context,
	path, sourceID string,
	batchSize int,
	fn func([]record.RawRecord) error,
) error {
	f, err := os.Open(path)
	if err != nil {
		return FileError(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]record.RawRecord, 0, batchSize)
	lineNum := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var entry kaikkiEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.log.Warn("skipping invalid JSON line",
				"file", path, "line", lineNum, "error", err)
			continue
		}

		language := entry.LangCode
		if language == "" {
			language = entry.Lang
		}
		if entry.Word == "" || language == "" {
			continue
		}

		var ipa string
		for _, s := range entry.Sounds {
			if s.IPA != "" {
				ipa = s.IPA
				break
			}
		}

		var glosses []string
		for _, s := range entry.Senses {
			glosses = append(glosses, s.Glosses...)
		}

		// Kaikki dumps occasionally carry broken UTF-8 sequences.
		payload := map[string]any{
			"headword":    gnlib.FixUtf8(entry.Word),
			"language":    language,
			"ipa":         ipa,
			"definition":  gnlib.FixUtf8(strings.Join(glosses, " | ")),
			"etymology":   gnlib.FixUtf8(entry.EtymologyText),
			"pos_tag":     entry.POS,
			"source_type": "wiktionary",
		}

		raw, err := newRawRecord(sourceID, payload, path, lineNum)
		if err != nil {
			return err
		}
		batch = append(batch, raw)

		if len(batch) >= batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return FileError(path, err)
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// SwadeshLoader reads comparative wordlists from CSV. The header holds
// a "concept" column plus one column per language code; every non-empty
// cell becomes one entry. Cells holding "-" mark a missing word.
type SwadeshLoader struct {
	log *slog.Logger
}

func (l *SwadeshLoader) Load(
	ctx context.Context,
	path, sourceID string,
	batchSize int,
	fn func([]record.RawRecord) error,
) error {
	f, err := os.Open(path)
	if err != nil {
		return FileError(path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return FileError(path, err)
	}

	conceptCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "concept") {
			conceptCol = i
			break
		}
	}

	batch := make([]record.RawRecord, 0, batchSize)
	lineNum := 1

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return FileError(path, err)
		}
		lineNum++

		var concept string
		if conceptCol >= 0 && conceptCol < len(row) {
			concept = strings.TrimSpace(row[conceptCol])
		}

		for i, cell := range row {
			if i == conceptCol || i >= len(header) {
				continue
			}
			word := strings.TrimSpace(cell)
			if word == "" || word == "-" {
				continue
			}

			payload := map[string]any{
				"headword":    gnlib.FixUtf8(word),
				"language":    strings.TrimSpace(header[i]),
				"definition":  concept,
				"concept":     concept,
				"source_type": "swadesh",
			}

			raw, err := newRawRecord(sourceID, payload, path, lineNum)
			if err != nil {
				return err
			}
			batch = append(batch, raw)

			if len(batch) >= batchSize {
				if err := fn(batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func newRawRecord(
	sourceID string,
	payload map[string]any,
	path string,
	lineNum int,
) (record.RawRecord, error) {
	checksum, err := record.Checksum(payload)
	if err != nil {
		return record.RawRecord{}, FileError(path, err)
	}
	return record.RawRecord{
		SourceID:   sourceID,
		Payload:    payload,
		Checksum:   checksum,
		FilePath:   path,
		LineNumber: lineNum,
	}, nil
}
