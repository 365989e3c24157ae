package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidMedia is returned for media entries that cannot be stored unchanged
var ErrInvalidMedia = errors.New("invalid media entry")

// encodeMedia serializes the media list for the media column. A nil list is stored as [].
// Entries must be valid UTF-8, since JSON would otherwise rewrite them.
func encodeMedia(media []string) (string, error) {
	if media == nil {
		media = []string{}
	}
	for i, m := range media {
		if !utf8.ValidString(m) {
			return "", fmt.Errorf("%w: entry %d is not valid UTF-8", ErrInvalidMedia, i)
		}
	}
	b, err := json.Marshal(media)
	if err != nil {
		return "", fmt.Errorf("encode media: %w", err)
	}
	return string(b), nil
}

// decodeMedia never returns a nil slice
func decodeMedia(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return []string{}, nil
	}
	var media []string
	if err := json.Unmarshal([]byte(raw.String), &media); err != nil {
		return nil, fmt.Errorf("%w: media %q: %v", ErrCorruptRow, raw.String, err)
	}
	if media == nil {
		media = []string{}
	}
	return media, nil
}
