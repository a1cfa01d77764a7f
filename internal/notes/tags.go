package notes

import "strings"

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeTags normalizes every entry, dropping blanks and repeats and
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out, _ = AddTag(out, tag)
	}
	return out
}

// AddTag appends raw after normalizing. It reports false when the tag is
// blank or already present.
func AddTag(tags []string, raw string) ([]string, bool) {
	tag := NormalizeTag(raw)
	if tag == "" {
		return tags, false
	}
	for _, existing := range tags {
		if strings.EqualFold(existing, tag) {
			return tags, false
		}
	}
	out := make([]string, len(tags), len(tags)+1)
	copy(out, tags)
	return append(out, tag), true
}

// RemoveLastTag drops the final tag, used by backspace on an empty input.
func RemoveLastTag(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	out := make([]string, len(tags)-1)
	copy(out, tags)
	return out
}

// SplitTagInput splits typed input on commas. The last segment is what is
// still being typed and is returned separately.
func SplitTagInput(input string) (complete []string, pending string) {
	parts := strings.Split(input, ",")
	for _, part := range parts[:len(parts)-1] {
		if tag := NormalizeTag(part); tag != "" {
			complete = append(complete, tag)
		}
	}
	return complete, parts[len(parts)-1]
}

// EqualTags reports whether a and b hold the same tags in the same order.
func EqualTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
