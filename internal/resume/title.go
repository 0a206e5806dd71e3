package resume

import (
	"fmt"
	"regexp"
)

// maxCopySuffix bounds the collision loop; each iteration strictly increases
// the counter against a finite title set, so the cap only guards against a
// pathological exists callback.
const maxCopySuffix = 1000

var copySuffixPattern = regexp.MustCompile(`^(.+) \(Copy( \d+)?\)$`)

// CopyTitle computes a duplicate title for original that does not collide with
// any title the exists callback reports. "Resume" becomes "Resume (Copy)", and
// while taken the suffix counts up: "Resume (Copy 2)", "Resume (Copy 3)", ...
// A title that already carries a copy suffix is collapsed back to its base
// before the suffix is reapplied, so copies of copies do not stack suffixes.
func CopyTitle(original string, exists func(title string) (bool, error)) (string, error) {
	base := original
	if m := copySuffixPattern.FindStringSubmatch(original); m != nil {
		base = m[1]
	}

	title := base + " (Copy)"
	for counter := 2; counter <= maxCopySuffix; counter++ {
		taken, err := exists(title)
		if err != nil {
			return "", fmt.Errorf("check title %q: %w", title, err)
		}
		if !taken {
			return title, nil
		}
		title = fmt.Sprintf("%s (Copy %d)", base, counter)
	}

	return "", fmt.Errorf("no free copy title for %q after %d attempts", original, maxCopySuffix)
}
