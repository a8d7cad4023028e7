package beatmap

import (
	"regexp"
	"strings"
	"time"

	"github.com/DAYGoodTime/nogu/internal/osu"
)

// md5Pattern matches a full 32-digit hexadecimal beatmap hash.
var md5Pattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ignoredFilenameChars are removed when rendering .osu filenames, matching
// what the osu! client strips from map filenames.
const ignoredFilenameChars = `:\/*<>?"|`

// Ident is a client-supplied beatmap identifier: either a 32-hex md5 hash
// or a decimal beatmap id.
type Ident string

func (i Ident) IsMD5() bool { return md5Pattern.MatchString(string(i)) }

func (i Ident) IsID() bool {
	if len(i) == 0 {
		return false
	}
	for _, r := range i {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ID returns the numeric value of an id ident, or 0 when the ident is a hash.
func (i Ident) ID() int64 {
	if !i.IsID() {
		return 0
	}
	var n int64
	for _, r := range i {
		n = n*10 + int64(r-'0')
	}
	return n
}

func (i Ident) Valid() bool { return i.IsMD5() || i.IsID() }

// Canonical trims surrounding space and lowercases hash idents so equivalent
// spellings of one hash share a single request key and store row.
func (i Ident) Canonical() Ident {
	c := Ident(strings.TrimSpace(string(i)))
	if c.IsMD5() {
		return Ident(strings.ToLower(string(c)))
	}
	return c
}

// Beatmap is one difficulty of an osu! map set. The md5 hash is the primary
// key; id and set_id are zero for maps that exist only on the local server.
type Beatmap struct {
	MD5             string           `json:"md5"`
	ID              int64            `json:"id,omitempty"`
	SetID           int64            `json:"set_id,omitempty"`
	RankedStatus    osu.RankedStatus `json:"ranked_status"`
	Artist          string           `json:"artist"`
	Title           string           `json:"title"`
	Version         string           `json:"version"`
	Creator         string           `json:"creator"`
	Filename        string           `json:"filename"`
	TotalLength     int              `json:"total_length"`
	MaxCombo        int              `json:"max_combo"`
	Mode            osu.Mode         `json:"mode"`
	BPM             float64          `json:"bpm"`
	CS              float64          `json:"cs"`
	AR              float64          `json:"ar"`
	OD              float64          `json:"od"`
	HP              float64          `json:"hp"`
	StarRating      float64          `json:"star_rating"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ServerUpdatedAt time.Time        `json:"server_updated_at"`
	ServerID        osu.Server       `json:"server_id"`
}

// Filename renders the canonical "{artist} - {title} ({creator}) [{version}].osu"
// map filename with the characters osu! refuses in filenames removed.
func Filename(artist, title, creator, version string) string {
	name := artist + " - " + title + " (" + creator + ") [" + version + "].osu"
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(ignoredFilenameChars, r) {
			return -1
		}
		return r
	}, name)
}
