package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mediagrab-io/mediagrab-backend/internal/session"
)

// Downloader is the extraction/download collaborator. All three calls
// signal failure by returning zero values instead of propagating a fault;
// the controller only ever sees "it worked" or "it didn't".
type Downloader interface {
	ListFormats(ctx context.Context, url string) (session.MediaInfo, []session.FormatChoice)
	DownloadByFormat(ctx context.Context, url, formatID string) (string, session.MediaInfo)
	DownloadExtractAudio(ctx context.Context, url string) (string, session.MediaInfo)
}

// MediaDownloader shells out to the yt-dlp binary.
type MediaDownloader struct {
	binPath     string
	dir         string
	cookiesFile string
}

// NewMediaDownloader creates a downloader writing into dir. The binary
// path and an optional Netscape cookies file come from the environment.
func NewMediaDownloader(dir string) *MediaDownloader {
	binPath := os.Getenv("YTDLP_PATH")
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &MediaDownloader{
		binPath:     binPath,
		dir:         dir,
		cookiesFile: os.Getenv("COOKIES_FILE"),
	}
}

// probeResult is the subset of yt-dlp's -J output we consume.
type probeResult struct {
	Title     string      `json:"title"`
	Duration  float64     `json:"duration"`
	Uploader  string      `json:"uploader"`
	ViewCount int64       `json:"view_count"`
	Formats   []RawFormat `json:"formats"`
}

// ListFormats probes the URL and returns display metadata plus the
// selectable format catalog. Returns nil, nil on any failure.
func (d *MediaDownloader) ListFormats(ctx context.Context, url string) (session.MediaInfo, []session.FormatChoice) {
	probe := d.probe(ctx, url)
	if probe == nil {
		return nil, nil
	}
	return probe.mediaInfo(), BuildFormatCatalog(probe.Formats)
}

// DownloadByFormat downloads the stream selected by formatID and returns
// the local file path plus metadata. Returns "", nil on any failure.
func (d *MediaDownloader) DownloadByFormat(ctx context.Context, url, formatID string) (string, session.MediaInfo) {
	probe := d.probe(ctx, url)
	if probe == nil {
		return "", nil
	}

	path := d.run(ctx, url, "-f", formatID)
	if path == "" {
		return "", nil
	}
	return path, probe.mediaInfo()
}

// DownloadExtractAudio downloads the best audio stream and converts it to
// mp3. Returns "", nil on any failure.
func (d *MediaDownloader) DownloadExtractAudio(ctx context.Context, url string) (string, session.MediaInfo) {
	probe := d.probe(ctx, url)
	if probe == nil {
		return "", nil
	}

	path := d.run(ctx, url, "-f", "bestaudio/best", "-x", "--audio-format", "mp3")
	if path == "" {
		return "", nil
	}
	return path, probe.mediaInfo()
}

func (d *MediaDownloader) probe(ctx context.Context, url string) *probeResult {
	args := d.commonArgs()
	args = append(args, "-J", url)

	cmd := exec.CommandContext(ctx, d.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Printf("⚠️ yt-dlp probe failed for %s: %v (%s)", url, err, stderr.String())
		return nil
	}

	var probe probeResult
	if err := json.Unmarshal(stdout.Bytes(), &probe); err != nil {
		log.Printf("⚠️ yt-dlp probe output unreadable for %s: %v", url, err)
		return nil
	}
	return &probe
}

// run executes a download with a collision-resistant output name and
// returns the resulting file path, or "" on failure.
func (d *MediaDownloader) run(ctx context.Context, url string, extra ...string) string {
	name := uuid.NewString()
	outTmpl := filepath.Join(d.dir, name+".%(ext)s")

	args := d.commonArgs()
	args = append(args, extra...)
	args = append(args, "-o", outTmpl, url)

	cmd := exec.CommandContext(ctx, d.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Printf("⚠️ yt-dlp download failed for %s: %v (%s)", url, err, stderr.String())
		return ""
	}

	// yt-dlp expanded %(ext)s itself; find what it wrote.
	matches, err := filepath.Glob(filepath.Join(d.dir, name+".*"))
	if err != nil || len(matches) == 0 {
		log.Printf("⚠️ yt-dlp reported success but no output file for %s", url)
		return ""
	}
	return matches[0]
}

func (d *MediaDownloader) commonArgs() []string {
	args := []string{"--no-playlist", "--quiet", "--no-warnings"}
	if d.cookiesFile != "" {
		args = append(args, "--cookies", d.cookiesFile)
	}
	return args
}

func (p *probeResult) mediaInfo() session.MediaInfo {
	return session.MediaInfo{
		"title":      p.Title,
		"duration":   int(p.Duration),
		"uploader":   p.Uploader,
		"view_count": p.ViewCount,
	}
}
