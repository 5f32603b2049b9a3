package debatewire

import "strings"

// topicPrefixRunes is how much of a topic two sources are trusted to agree on.
const topicPrefixRunes = 80

// NormalizeTopic case-folds a topic and collapses its whitespace.
func NormalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}

func topicPrefix(normalized string) string {
	r := []rune(normalized)
	if len(r) > topicPrefixRunes {
		r = r[:topicPrefixRunes]
	}
	return string(r)
}

// SameTopic reports whether two topic strings describe the same debate: the
// truncated normalized prefix of either must occur in the other.
//
// Two different debates sharing an 80 character prefix are conflated.
func SameTopic(a, b string) bool {
	na, nb := NormalizeTopic(a), NormalizeTopic(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(nb, topicPrefix(na)) || strings.Contains(na, topicPrefix(nb))
}
