package artifacts

import (
	"path"
	"strings"
)

// Match reports whether the slash separated name matches the exclusion pattern.
//
//   - "META-INF/" (trailing slash) matches everything below that directory
//   - "*.sha1" and "?" follow path.Match and never cross a "/"
//   - "**" matches any number of segments: "**/*.git", "org/**", "a/**/b"
//
// Malformed patterns never match.
func Match(pattern string, name string) bool {
	if pattern == "" {
		return false
	}
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(name, pattern) || Match(pattern+"**", name)
	}
	if pattern == "**" {
		return true
	}
	if !strings.Contains(pattern, "**") {
		return matchGlob(pattern, name)
	}

	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return matchGlob(prefix, name) || hasMatchingPrefix(prefix, name)
	}
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		return matchGlob(suffix, name) || hasMatchingSuffix(suffix, name)
	}

	i := strings.Index(pattern, "/**/")
	if i < 0 {
		return false
	}
	prefix, suffix := pattern[:i], pattern[i+4:]
	if matchGlob(prefix+"/"+suffix, name) {
		return true
	}

	prefixDepth := strings.Count(prefix, "/") + 1
	suffixDepth := strings.Count(suffix, "/") + 1
	segments := strings.Split(name, "/")
	if len(segments) < prefixDepth+1+suffixDepth {
		return false
	}
	return matchGlob(prefix, strings.Join(segments[:prefixDepth], "/")) &&
		matchGlob(suffix, strings.Join(segments[len(segments)-suffixDepth:], "/"))
}

// MatchAny reports whether any pattern matches name
func MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if Match(p, name) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, s string) bool {
	matched, err := path.Match(pattern, s)
	return err == nil && matched
}

// hasMatchingPrefix reports whether name starts with segments matching pattern
// followed by at least one more segment
func hasMatchingPrefix(pattern, name string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.SplitN(name, "/", depth+1)
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[:depth], "/"))
}

// hasMatchingSuffix reports whether name ends with segments matching pattern
// preceded by at least one more segment
func hasMatchingSuffix(pattern, name string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.Split(name, "/")
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[len(segments)-depth:], "/"))
}
