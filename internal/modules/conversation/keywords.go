// README: Ordered yes/no lexical cue table used as extraction fallback.
package conversation

import "strings"

// yesNoCue is one entry of the fallback table. Cues are matched against whole
// tokens; an utterance matching cues of both polarities reads as ambiguous, so
// a stray affirmative word never outweighs an explicit refusal
// ("no adventure sports please" must not read as a yes).
type yesNoCue struct {
	phrase string
	value  bool
}

var yesNoCues = []yesNoCue{
	{"why not", true},
	{"of course", true},
	{"go ahead", true},
	{"yes please", true},
	{"no thanks", false},
	{"no thank you", false},
	{"not really", false},
	{"nothing risky", false},
	{"yes", true},
	{"yeah", true},
	{"yep", true},
	{"yup", true},
	{"sure", true},
	{"definitely", true},
	{"absolutely", true},
	{"certainly", true},
	{"ok", true},
	{"okay", true},
	{"no", false},
	{"nope", false},
	{"nah", false},
	{"never", false},
	{"none", false},
	{"skip", false},
	{"pass", false},
}

// negators flip an affirmative cue when they directly precede it
// ("not sure", "don't think so").
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "don": true,
	"wont": true, "won": true, "cant": true,
}

// MatchYesNo applies the cue table to the utterance. ok is false when no cue
// matches at all, or when cues of both polarities match; callers treat either
// as "ambiguous".
func MatchYesNo(utterance string) (value, ok bool) {
	tokens := normalizeTokens(utterance)
	if len(tokens) == 0 {
		return false, false
	}
	var yes, no bool
	for _, cue := range yesNoCues {
		idx := findTokenSeq(tokens, strings.Fields(cue.phrase))
		if idx < 0 {
			continue
		}
		switch {
		case cue.value && idx > 0 && negators[tokens[idx-1]]:
			// "not sure" reads as a refusal, not an agreement.
			no = true
		case cue.value:
			yes = true
		default:
			no = true
		}
	}
	if yes == no {
		return false, false
	}
	return yes, true
}

// normalizeTokens lowercases the utterance and strips punctuation so cues
// match "Yes!", "yes," and "YES" alike.
func normalizeTokens(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func findTokenSeq(tokens, seq []string) int {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return -1
	}
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j := range seq {
			if tokens[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
