package ioingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collectEntries(
	t *testing.T,
	loader Loader,
	path, sourceID string,
	batchSize int,
) []record.RawRecord {
	t.Helper()
	var out []record.RawRecord
	err := loader.Load(t.Context(), path, sourceID, batchSize,
		func(batch []record.RawRecord) error {
			out = append(out, batch...)
			return nil
		})
	require.NoError(t, err)
	return out
}

func TestKaikkiLoader(t *testing.T) {
	content := `{"word":"Haus","lang_code":"de","pos":"noun","etymology_text":"From Middle High German hūs.","sounds":[{"rhymes":"-aʊs"},{"ipa":"/haʊs/"}],"senses":[{"glosses":["house"]},{"glosses":["dwelling","building"]}]}
{"word":"Wasser","lang":"German","senses":[{"glosses":["water"]}]}

not json at all
{"word":"","lang_code":"de","senses":[{"glosses":["headless"]}]}
{"word":"orphan","senses":[{"glosses":["no language"]}]}
`
	path := writeTempFile(t, "de.jsonl", content)
	loader := &KaikkiLoader{log: slog.Default()}

	entries := collectEntries(t, loader, path, "kaikki-de", 100)
	require.Len(t, entries, 2)

	haus := entries[0]
	assert.Equal(t, "kaikki-de", haus.SourceID)
	assert.Equal(t, "Haus", haus.Payload["headword"])
	assert.Equal(t, "de", haus.Payload["language"])
	assert.Equal(t, "/haʊs/", haus.Payload["ipa"])
	assert.Equal(t, "house | dwelling | building", haus.Payload["definition"])
	assert.Equal(t, "From Middle High German hūs.", haus.Payload["etymology"])
	assert.Equal(t, "noun", haus.Payload["pos_tag"])
	assert.Equal(t, "wiktionary", haus.Payload["source_type"])
	assert.Len(t, haus.Checksum, 64)
	assert.Equal(t, 1, haus.LineNumber)

	// lang_code is absent, lang is the fallback.
	wasser := entries[1]
	assert.Equal(t, "German", wasser.Payload["language"])
	assert.Equal(t, "", wasser.Payload["ipa"])
	assert.Equal(t, 2, wasser.LineNumber)
}

func TestKaikkiLoaderBatching(t *testing.T) {
	content := `{"word":"a","lang_code":"de","senses":[{"glosses":["x"]}]}
{"word":"b","lang_code":"de","senses":[{"glosses":["y"]}]}
{"word":"c","lang_code":"de","senses":[{"glosses":["z"]}]}
`
	path := writeTempFile(t, "batch.jsonl", content)
	loader := &KaikkiLoader{log: slog.Default()}

	var batches [][]record.RawRecord
	err := loader.Load(t.Context(), path, "src", 2,
		func(batch []record.RawRecord) error {
			cp := make([]record.RawRecord, len(batch))
			copy(cp, batch)
			batches = append(batches, cp)
			return nil
		})
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
}

func TestKaikkiLoaderChecksumStable(t *testing.T) {
	content := `{"word":"Haus","lang_code":"de","senses":[{"glosses":["house"]}]}
`
	path := writeTempFile(t, "stable.jsonl", content)
	loader := &KaikkiLoader{log: slog.Default()}

	first := collectEntries(t, loader, path, "src", 10)
	second := collectEntries(t, loader, path, "src", 10)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Checksum, second[0].Checksum)
}

func TestKaikkiLoaderMissingFile(t *testing.T) {
	loader := &KaikkiLoader{log: slog.Default()}
	err := loader.Load(t.Context(), "/no/such/file.jsonl", "src", 10,
		func([]record.RawRecord) error { return nil })
	assert.Error(t, err)
}

func TestSwadeshLoader(t *testing.T) {
	content := `concept,de,fr,la
water,Wasser,eau,aqua
fire,Feuer,feu,-
I,ich,,ego
`
	path := writeTempFile(t, "swadesh.csv", content)
	loader := &SwadeshLoader{log: slog.Default()}

	entries := collectEntries(t, loader, path, "swadesh-100", 100)
	require.Len(t, entries, 7)

	first := entries[0]
	assert.Equal(t, "Wasser", first.Payload["headword"])
	assert.Equal(t, "de", first.Payload["language"])
	assert.Equal(t, "water", first.Payload["concept"])
	assert.Equal(t, "water", first.Payload["definition"])
	assert.Equal(t, "swadesh", first.Payload["source_type"])
	assert.Equal(t, 2, first.LineNumber)

	langs := make(map[string]int)
	for _, e := range entries {
		langs[e.Payload["language"].(string)]++
	}
	assert.Equal(t, 3, langs["de"])
	assert.Equal(t, 2, langs["fr"])
	assert.Equal(t, 2, langs["la"], `cells holding "-" are skipped`)
}

func TestForFormat(t *testing.T) {
	log := slog.Default()

	loader, err := ForFormat("jsonl", log)
	require.NoError(t, err)
	assert.IsType(t, &KaikkiLoader{}, loader)

	loader, err = ForFormat("CSV", log)
	require.NoError(t, err)
	assert.IsType(t, &SwadeshLoader{}, loader)

	_, err = ForFormat("xml", log)
	assert.Error(t, err)
}
