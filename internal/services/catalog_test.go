package services_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/mediagrab-io/mediagrab-backend/internal/services"
)

func TestCatalogRanksBestFirst(t *testing.T) {
	raw := []services.RawFormat{
		{Height: 720, Filesize: 500, Ext: "mp4", FormatID: "A"},
		{Height: 1080, Filesize: 900, Ext: "mp4", FormatID: "B"},
	}

	choices := services.BuildFormatCatalog(raw)
	if len(choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(choices))
	}
	if choices[0].ShortID != "1" || choices[0].FormatID != "B" {
		t.Fatalf("best format should be first: %+v", choices[0])
	}
	if choices[1].ShortID != "2" || choices[1].FormatID != "A" {
		t.Fatalf("second format wrong: %+v", choices[1])
	}
}

func TestCatalogFilesizeBreaksTies(t *testing.T) {
	raw := []services.RawFormat{
		{Height: 720, Filesize: 100, Ext: "webm", FormatID: "small"},
		{Height: 720, Filesize: 900, Ext: "mp4", FormatID: "big"},
	}

	choices := services.BuildFormatCatalog(raw)
	if choices[0].FormatID != "big" {
		t.Fatalf("larger file should rank first at equal height: %+v", choices[0])
	}
}

func TestCatalogDeduplicates(t *testing.T) {
	raw := []services.RawFormat{
		{Height: 720, Filesize: 900, Ext: "mp4", FormatID: "A"},
		{Height: 720, Filesize: 100, Ext: "mp4", FormatID: "A"},
		{Height: 720, Filesize: 50, Ext: "webm", FormatID: "A"},
	}

	choices := services.BuildFormatCatalog(raw)
	if len(choices) != 2 {
		t.Fatalf("expected dedupe on (format id, label), got %d entries", len(choices))
	}
	// First occurrence wins, which the sort makes the better instance.
	if choices[0].Filesize != 900 {
		t.Fatalf("dedupe should keep the better-ranked instance: %+v", choices[0])
	}
}

func TestCatalogCapsAtTwenty(t *testing.T) {
	var raw []services.RawFormat
	for i := 0; i < 30; i++ {
		raw = append(raw, services.RawFormat{
			Height:   100 + i,
			Ext:      "mp4",
			FormatID: fmt.Sprintf("f%d", i),
		})
	}

	choices := services.BuildFormatCatalog(raw)
	if len(choices) != 20 {
		t.Fatalf("catalog must cap at 20, got %d", len(choices))
	}
	for i, choice := range choices {
		want := fmt.Sprintf("%d", i+1)
		if choice.ShortID != want {
			t.Fatalf("short ids must be sequential: got %s at position %d", choice.ShortID, i)
		}
	}
}

func TestCatalogEmptyInput(t *testing.T) {
	if choices := services.BuildFormatCatalog(nil); len(choices) != 0 {
		t.Fatalf("empty input must yield empty output, got %d", len(choices))
	}
}

func TestCatalogIsDeterministic(t *testing.T) {
	raw := []services.RawFormat{
		{Height: 480, Filesize: 10, Ext: "mp4", FormatID: "a"},
		{Height: 480, Filesize: 10, Ext: "webm", FormatID: "b"},
		{FormatID: "c", Ext: "m4a", FormatNote: "audio only"},
	}

	first := services.BuildFormatCatalog(raw)
	second := services.BuildFormatCatalog(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("catalog builder must be deterministic")
	}
}

func TestCatalogLabels(t *testing.T) {
	cases := []struct {
		raw  services.RawFormat
		want string
	}{
		{services.RawFormat{FormatID: "1", FormatNote: "audio only", Ext: "m4a"}, "audio only (m4a)"},
		{services.RawFormat{FormatID: "2", Height: 720, Ext: "mp4"}, "720p mp4"},
		{services.RawFormat{FormatID: "3", Height: 1080}, "1080p"},
		{services.RawFormat{FormatID: "4", Ext: "webm"}, "webm"},
		{services.RawFormat{FormatID: "5"}, "5"},
	}

	for _, tc := range cases {
		choices := services.BuildFormatCatalog([]services.RawFormat{tc.raw})
		if len(choices) != 1 || choices[0].Label != tc.want {
			t.Fatalf("label for %+v: got %q, want %q", tc.raw, choices[0].Label, tc.want)
		}
	}
}

func TestCatalogMissingFieldsSortLast(t *testing.T) {
	raw := []services.RawFormat{
		{FormatID: "meta", FormatNote: "storyboard"},
		{Height: 360, Ext: "mp4", FormatID: "v"},
	}

	choices := services.BuildFormatCatalog(raw)
	if choices[0].FormatID != "v" {
		t.Fatalf("entries without height/filesize must sort last: %+v", choices)
	}
}
