package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mediagrab-io/mediagrab-backend/internal/session"
)

// maxFormatChoices caps the catalog so the inline keyboard stays usable.
const maxFormatChoices = 20

// RawFormat is one format entry as reported by yt-dlp. All fields besides
// FormatID may be missing.
type RawFormat struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	FormatNote string  `json:"format_note"`
	Height     int     `json:"height"`
	Filesize   int64   `json:"filesize"`
	FilesizeA  float64 `json:"filesize_approx"`
}

// BuildFormatCatalog turns the extractor's raw format list into an ordered,
// deduplicated, capped list of choices with sequential short ids.
//
// Ordering is descending by (height, filesize) so the best option comes
// first; entries missing those fields sort last. Duplicate (format id,
// label) pairs collapse to their first, better-ranked occurrence.
func BuildFormatCatalog(raw []RawFormat) []session.FormatChoice {
	ranked := make([]RawFormat, len(raw))
	copy(ranked, raw)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Height != ranked[j].Height {
			return ranked[i].Height > ranked[j].Height
		}
		return ranked[i].size() > ranked[j].size()
	})

	seen := make(map[string]bool)
	choices := make([]session.FormatChoice, 0, maxFormatChoices)
	for _, f := range ranked {
		if f.FormatID == "" {
			continue
		}
		label := formatLabel(f)

		key := f.FormatID + "|" + label
		if seen[key] {
			continue
		}
		seen[key] = true

		choices = append(choices, session.FormatChoice{
			ShortID:  strconv.Itoa(len(choices) + 1),
			Label:    label,
			FormatID: f.FormatID,
			Height:   f.Height,
			Filesize: f.size(),
		})
		if len(choices) == maxFormatChoices {
			break
		}
	}
	return choices
}

func (f RawFormat) size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return int64(f.FilesizeA)
}

// formatLabel derives a human-readable button label: the format note with
// the extension in parentheses when a note exists, otherwise a height
// synthesized as "720p" plus the extension.
func formatLabel(f RawFormat) string {
	if f.FormatNote != "" {
		if f.Ext != "" {
			return fmt.Sprintf("%s (%s)", f.FormatNote, f.Ext)
		}
		return f.FormatNote
	}
	if f.Height > 0 {
		if f.Ext != "" {
			return fmt.Sprintf("%dp %s", f.Height, f.Ext)
		}
		return fmt.Sprintf("%dp", f.Height)
	}
	if f.Ext != "" {
		return f.Ext
	}
	return f.FormatID
}
