package model

import (
	"net/url"
	"path"
	"strings"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Suffixes that select the video presentation path. Anything else,
// including a missing extension, is treated as an image.
var videoSuffixes = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".wmv": {}, ".flv": {}, ".mkv": {},
}

// ResultArtifact is the terminal payload of a succeeded job.
type ResultArtifact struct {
	URL  string
	Kind MediaKind
}

func NewResultArtifact(rawURL string) ResultArtifact {
	return ResultArtifact{URL: rawURL, Kind: KindForURL(rawURL)}
}

// KindForURL classifies a locator by its path suffix, case-insensitively.
func KindForURL(rawURL string) MediaKind {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if _, ok := videoSuffixes[ext]; ok {
		return MediaVideo
	}
	return MediaImage
}
