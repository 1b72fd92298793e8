package hls

import (
	"strconv"
	"strings"
)

const (
	streamInfTag = "#EXT-X-STREAM-INF:"
	mediaTag     = "#EXT-X-MEDIA:"
)

// VideoTrack is one variant stream from an EXT-X-STREAM-INF tag.
type VideoTrack struct {
	ID          int    `json:"id"`
	URL         string `json:"url,omitempty"`
	OriginalURL string `json:"original_url,omitempty"`

	// Bandwidth is the parsed BANDWIDTH value in bits per second, zero when
	// the attribute is missing or not numeric. BandwidthRaw always holds the
	// verbatim attribute text.
	Bandwidth    int64  `json:"bandwidth,omitempty"`
	BandwidthRaw string `json:"bandwidth_raw,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	Codecs       string `json:"codecs,omitempty"`
	FrameRate    string `json:"frame_rate,omitempty"`
	AudioGroup   string `json:"audio_group,omitempty"`
	HDCPLevel    string `json:"hdcp_level,omitempty"`
	ProgramID    string `json:"program_id,omitempty"`
	VideoRange   string `json:"video_range,omitempty"`
}

// MediaTrack is an alternate rendition from an EXT-X-MEDIA tag. A track with
// an empty URL has no dedicated playlist; its media is muxed into the video
// variant.
type MediaTrack struct {
	ID          int    `json:"id"`
	URL         string `json:"url,omitempty"`
	OriginalURL string `json:"original_url,omitempty"`

	GroupID         string `json:"group_id,omitempty"`
	Name            string `json:"name,omitempty"`
	Language        string `json:"language,omitempty"`
	Default         bool   `json:"is_default"`
	Autoselect      bool   `json:"autoselect"`
	Characteristics string `json:"characteristics,omitempty"`
	Type            string `json:"type,omitempty"`
	Codecs          string `json:"codecs,omitempty"`
}

// Catalog holds all renditions found in one master playlist. Track IDs are
// contiguous from zero within each list and reflect manifest order; they are
// only stable for the lifetime of this catalog.
type Catalog struct {
	Video     []VideoTrack `json:"video"`
	Audio     []MediaTrack `json:"audio"`
	Subtitles []MediaTrack `json:"subtitles"`
}

// Parse scans master playlist text and builds the track catalog. Media URIs
// are resolved against baseURL. Unknown tags and malformed attribute lines
// are skipped; an empty manifest yields an empty catalog, not an error.
func Parse(content, baseURL string) *Catalog {
	catalog := &Catalog{
		Video:     []VideoTrack{},
		Audio:     []MediaTrack{},
		Subtitles: []MediaTrack{},
	}

	var pending *VideoTrack

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, streamInfTag):
			attrs := ParseAttributeList(line[len(streamInfTag):])
			track := VideoTrack{
				BandwidthRaw: attrs["BANDWIDTH"],
				Resolution:   attrs["RESOLUTION"],
				Codecs:       attrs["CODECS"],
				FrameRate:    attrs["FRAME-RATE"],
				AudioGroup:   attrs["AUDIO"],
				HDCPLevel:    attrs["HDCP-LEVEL"],
				ProgramID:    attrs["PROGRAM-ID"],
				VideoRange:   attrs["VIDEO-RANGE"],
			}
			if bw, err := strconv.ParseInt(attrs["BANDWIDTH"], 10, 64); err == nil {
				track.Bandwidth = bw
			}
			pending = &track

		case pending != nil && !strings.HasPrefix(line, "#"):
			// URI line completing the open variant record
			pending.URL = MakeAbsolute(line, baseURL)
			pending.OriginalURL = line
			catalog.Video = append(catalog.Video, *pending)
			pending = nil

		case strings.HasPrefix(line, mediaTag):
			attrs := ParseAttributeList(line[len(mediaTag):])
			track := MediaTrack{
				GroupID:         attrs["GROUP-ID"],
				Name:            attrs["NAME"],
				Language:        attrs["LANGUAGE"],
				Default:         strings.EqualFold(attrs["DEFAULT"], "YES"),
				Autoselect:      strings.EqualFold(attrs["AUTOSELECT"], "YES"),
				Characteristics: attrs["CHARACTERISTICS"],
				Type:            attrs["TYPE"],
				Codecs:          attrs["CODECS"],
			}
			if uri := attrs["URI"]; uri != "" {
				track.URL = MakeAbsolute(uri, baseURL)
				track.OriginalURL = uri
			}

			switch strings.ToUpper(attrs["TYPE"]) {
			case "AUDIO":
				catalog.Audio = append(catalog.Audio, track)
			case "SUBTITLES":
				catalog.Subtitles = append(catalog.Subtitles, track)
			}
			// Other media types (e.g. CLOSED-CAPTIONS) are parsed but not kept
		}
	}
	// A STREAM-INF tag with no following URI line is dropped, not an error

	for i := range catalog.Video {
		catalog.Video[i].ID = i
	}
	for i := range catalog.Audio {
		catalog.Audio[i].ID = i
	}
	for i := range catalog.Subtitles {
		catalog.Subtitles[i].ID = i
	}

	return catalog
}

// IsPlaylist reports whether content looks like an M3U8 playlist: it starts
// with #EXTM3U and declares either variant streams or media segments. Used
// for advisory warnings only.
func IsPlaylist(content string) bool {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "#EXTM3U") {
		return false
	}
	return strings.Contains(trimmed, streamInfTag) || strings.Contains(trimmed, "#EXTINF:")
}
