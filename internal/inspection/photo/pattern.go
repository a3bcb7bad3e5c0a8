// Package photo turns the photo references inspectors write on drawings
// ("9月8日 S47,53") into file patterns and resolves them against the photo
// folders of a drawing in the object store.
package photo

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
)

var (
	fragmentRe = regexp.MustCompile(`^\s*(?:(\d{1,2}月\d{1,2}日)\s*)?([^\d\s]*)\s*(\d+)\s*$`)
	asideRe    = regexp.MustCompile(`\([^()]*\)`)
)

// Pattern is one normalized photo reference.
type Pattern struct {
	Date   string `json:"date,omitempty"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Glob is the wildcard form of the pattern relative to the drawing folder,
// e.g. "佐藤*/*0047.jpg".
func (p Pattern) Glob() string {
	return p.Name + "*/*" + p.Number + ".jpg"
}

// Folder is the photographer folder name: "9月8日　佐藤", or just the name
// when the reference carried no date.
func (p Pattern) Folder() string {
	if p.Date == "" {
		return p.Name
	}
	return p.Date + "　" + p.Name
}

func (p Pattern) String() string {
	if p.Date == "" {
		return p.Glob()
	}
	return p.Date + " " + p.Glob()
}

// ParseSpec splits a photo reference on commas and normalizes each fragment.
// A fragment without a date or name inherits them from the fragment before
// it. Initials are replaced through names. Fragments that carry no name even
// after inheritance, or whose number exceeds four digits, are dropped.
func ParseSpec(spec string, names catalog.Names) []Pattern {
	spec = shorthand.Fold(spec)
	for asideRe.MatchString(spec) {
		spec = asideRe.ReplaceAllString(spec, "")
	}

	var (
		out  []Pattern
		date string
		name string
	)
	for _, fragment := range strings.Split(spec, ",") {
		m := fragmentRe.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		if m[1] != "" {
			date = m[1]
		}
		if m[2] != "" {
			name = m[2]
		}
		number, err := shorthand.Pad4(m[3])
		if err != nil || name == "" {
			continue
		}
		out = append(out, Pattern{
			Date:   date,
			Name:   names.Replace(name),
			Number: number,
		})
	}
	return out
}

// Matches reports whether key lies in a photographer folder under prefix and
// names a photo ending in the pattern's number.
func (p Pattern) Matches(prefix, key string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := key[len(prefix):]
	slash := strings.LastIndex(rest, "/")
	if slash < 0 {
		return false
	}
	file := strings.ToLower(rest[slash+1:])
	return strings.HasSuffix(file, p.Number+".jpg")
}
