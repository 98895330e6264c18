package exclusion

import "regexp"

// staticPatterns reject recursion into structural noise regardless of user
// configuration. They are matched against the full path, case-insensitively,
// and require no I/O, so the scanner checks them before attempting a read.
var staticPatterns = []*regexp.Regexp{
	// Dependency and build output trees.
	regexp.MustCompile(`(?i)[\\/]node_modules([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]vendor([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]__pycache__([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/](target|build|dist|out)[\\/](debug|release|classes|obj)([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]\.(gradle|m2|cargo|npm|yarn)[\\/]cache([\\/]|$)`),

	// Version control metadata.
	regexp.MustCompile(`(?i)[\\/]\.(git|svn|hg)([\\/]|$)`),

	// Recycle bins and trashes.
	regexp.MustCompile(`(?i)[\\/]\$recycle\.bin([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]\.trash(es)?(-[0-9]+)?([\\/]|$)`),

	// OS-reserved virtual and system trees.
	regexp.MustCompile(`^/(proc|sys|dev|run)([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]windows[\\/](winsxs|temp|servicing)([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]system volume information([\\/]|$)`),

	// Caches, logs and temp directories. Temp matching is scoped to known
	// OS locations; a bare "tmp" segment would reject legitimate user data.
	regexp.MustCompile(`(?i)[\\/]\.?cache(s)?([\\/]|$)`),
	regexp.MustCompile(`(?i)[\\/]appdata[\\/]local[\\/]temp([\\/]|$)`),
	regexp.MustCompile(`^/var/(log|tmp)([\\/]|$)`),
}

// MatchesStatic reports whether a path hits any structural exclusion
// pattern. Independent of the dynamic set.
func MatchesStatic(path string) bool {
	for _, re := range staticPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
