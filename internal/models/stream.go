package models

import "strings"

// StreamKind tells the player how to embed a stream URL
type StreamKind int

const (
	StreamNone StreamKind = iota
	StreamHLS
	StreamMP4
	StreamEmbed
)

// String returns the string representation of the stream kind
func (k StreamKind) String() string {
	switch k {
	case StreamHLS:
		return "hls"
	case StreamMP4:
		return "mp4"
	case StreamEmbed:
		return "embed"
	default:
		return "none"
	}
}

// StreamLink is the answer of /watch/{name}/{episode}. A nil URL means no stream was found.
type StreamLink struct {
	StreamURL *string `json:"stream_url"`
}

// URL returns the stream URL or an empty string
func (s StreamLink) URL() string {
	if s.StreamURL == nil {
		return ""
	}
	return *s.StreamURL
}

// Kind classifies the stream URL: HLS playlists, direct MP4 files, or embeddable pages
func (s StreamLink) Kind() StreamKind {
	url := s.URL()
	switch {
	case url == "":
		return StreamNone
	case strings.Contains(url, ".m3u8"):
		return StreamHLS
	case strings.Contains(url, ".mp4"):
		return StreamMP4
	default:
		return StreamEmbed
	}
}
