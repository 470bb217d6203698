package services

import (
	"fmt"

	"github.com/mediagrab-io/mediagrab-backend/internal/session"
)

// VideoCaption renders the caption attached to a delivered video.
func VideoCaption(info session.MediaInfo, qualityLabel string) string {
	return fmt.Sprintf("🎬 %s\n⏱️ %s\n🔰 Quality: %s",
		info.Title(), FormatDuration(info.Duration()), qualityLabel)
}

// AudioCaption renders the caption attached to extracted audio.
func AudioCaption(info session.MediaInfo) string {
	return fmt.Sprintf("🎵 %s\n⏱️ %s\n⚡ Audio extracted (MP3)",
		info.Title(), FormatDuration(info.Duration()))
}

// FormatDuration renders seconds as m:ss with zero-padded seconds.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
