package record

import (
	"strings"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
)

const (
	sentenceEnd      = "見られる。"
	sentenceContinue = "見られ、"
	sentenceJoiner   = "また"
	relatedHeading   = "\n【関連損傷】\n"
)

// Comment writes the report finding for aligned groups, e.g.
// "主桁に腐食が見られ、横桁に鉄筋露出が見られる。". Clauses before the last are
// joined with また and the last one follows directly. Pairs involving more
// than one part or damage are listed again under a related-damage heading.
func Comment(pairs []Pair, parts [][]shorthand.Part, damages [][]shorthand.Damage) string {
	var sentences []string
	var related []string

	for _, pair := range pairs {
		ps, ds := parts[pair.A], damages[pair.B]

		if s := Sentence(ps, ds); s != "" {
			sentences = append(sentences, s)
		}
		if len(ps) != 1 || len(ds) != 1 {
			related = append(related, relatedText(ps, ds))
		}
	}

	comment := ""
	if n := len(sentences); n > 0 {
		comment = strings.Join(sentences[:n-1], sentenceJoiner) + sentences[n-1]
	}
	if n := strings.Count(comment, sentenceEnd); n > 1 {
		comment = strings.Replace(comment, sentenceEnd, sentenceContinue, n-1)
	}
	if len(related) > 0 {
		comment += relatedHeading + strings.Join(related, ",")
	}
	return comment
}

// Sentence writes one clause: "{part}に{damages}が見られる。". Several part
// names are joined with および, the last one after a comma.
func Sentence(parts []shorthand.Part, damages []shorthand.Damage) string {
	desc := shorthand.Describe(damages)
	if desc == "" || len(parts) == 0 {
		return ""
	}

	var names []string
	seen := make(map[string]bool)
	for _, p := range parts {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}

	subject := names[len(names)-1]
	if len(names) > 1 {
		subject = strings.Join(names[:len(names)-1], "および") + "," + subject
	}
	return subject + "に" + desc + "が" + sentenceEnd
}

func relatedText(parts []shorthand.Part, damages []shorthand.Damage) string {
	labels := make([]string, 0, len(damages))
	for _, d := range damages {
		labels = append(labels, d.Label())
	}
	dmg := strings.Join(labels, ",")

	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		entries = append(entries, p.Text+":"+dmg)
	}
	return strings.Join(entries, ",")
}
