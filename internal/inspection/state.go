package inspection

import (
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/photo"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
)

// ParserState is carried from span to span within one drawing import. Each
// span step takes the state and returns the updated one.
type ParserState struct {
	// NextPicture is the number handed to the next "写真番号-00" photo.
	NextPicture int
	// Fallback remembers the last photo set resolved in this drawing.
	Fallback photo.Fallback
	// Rotator spreads shared photo sets over sibling records.
	Rotator photo.Rotator
}

// NewParserState returns the state at the start of a drawing.
func NewParserState() ParserState {
	return ParserState{NextPicture: 1}
}

// NumberPictures sets the picture number of the records assembled from one
// annotation. Records showing the same photo share a number. Explicit
// numbers are used in order, the last one repeating; zero entries draw from
// the running counter.
func (st ParserState) NumberPictures(p shorthand.Parsed, recs []record.DamageRecord) ParserState {
	if len(p.PictureNumbers) == 0 {
		return st
	}

	groups := make(map[string]int)
	assigned := make(map[int]int)
	for i := range recs {
		key := ""
		if len(recs[i].PhotoRefs) > 0 {
			key = recs[i].PhotoRefs[0]
		}
		g, ok := groups[key]
		if !ok {
			g = len(groups)
			groups[key] = g
		}

		if n, ok := assigned[g]; ok {
			recs[i].PictureNumber = n
			continue
		}
		n := p.PictureNumbers[min(g, len(p.PictureNumbers)-1)]
		if n == shorthand.AutoPictureNumber {
			n = st.NextPicture
			st.NextPicture++
		} else if n >= st.NextPicture {
			st.NextPicture = n + 1
		}
		assigned[g] = n
		recs[i].PictureNumber = n
	}
	return st
}
