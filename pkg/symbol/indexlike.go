package symbol

import "github.com/dlclark/regexp2"

// indexLikePattern matches a non-negative integer with no leading zeros
// (other than the literal "0" itself), the same set of names hidden classes
// must flag via hasIndexLikeProperties.
var indexLikePattern = regexp2.MustCompile(`^(0|[1-9][0-9]*)$`, regexp2.None)

// IsIndexLike reports whether name parses as a non-negative integer property
// name, e.g. "0", "1", "42". Names with leading zeros such as "01" are not
// index-like.
func IsIndexLike(name string) bool {
	if name == "" {
		return false
	}
	matched, err := indexLikePattern.MatchString(name)
	return err == nil && matched
}
