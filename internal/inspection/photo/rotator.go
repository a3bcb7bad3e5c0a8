package photo

import "strings"

// Rotator spreads a shared photo set over the records that resolved it, so
// sibling records show different photos instead of repeating the first.
// The zero value is ready to use.
type Rotator struct {
	seen map[string]int
}

// Assign returns the photos for n sibling records. A single record keeps the
// whole set. Several records get one photo each, continuing the rotation
// from earlier calls with the same set.
func (r *Rotator) Assign(set []string, n int) [][]string {
	out := make([][]string, n)
	if n == 1 {
		out[0] = append([]string{}, set...)
		return out
	}
	if len(set) == 0 {
		for i := range out {
			out[i] = []string{}
		}
		return out
	}

	if r.seen == nil {
		r.seen = make(map[string]int)
	}
	key := strings.Join(set, "\x00")
	for i := range out {
		out[i] = []string{set[r.seen[key]%len(set)]}
		r.seen[key]++
	}
	return out
}

// Fallback remembers the last non-empty photo set of a drawing.
type Fallback struct {
	last []string
}

// Observe records a resolved set; empty sets are ignored.
func (f *Fallback) Observe(set []string) {
	if len(set) > 0 {
		f.last = append([]string(nil), set...)
	}
}

// Reuse returns the remembered set when found is empty and the record asked
// for a photo. The boolean reports whether the fallback fired.
func (f *Fallback) Reuse(found []string, wantsPhoto bool) ([]string, bool) {
	if len(found) > 0 || !wantsPhoto || len(f.last) == 0 {
		return found, false
	}
	return append([]string(nil), f.last...), true
}

// Last returns the remembered set.
func (f *Fallback) Last() []string {
	return f.last
}
