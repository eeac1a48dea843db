package filter

// Built-in names and globs hidden unless default ignores are disabled.
var (
	fallbackExcludedDirectories = []string{
		"__pycache__",
		"venv",
		"node_modules",
		"build",
		"dist",
		"*.egg-info",
		".git",
		".hg",
		".svn",
		".pytest_cache",
		".mypy_cache",
		".tox",
		".DS_Store",
	}
	fallbackExcludedFiles = []string{
		".DS_Store",
		"*.pyc",
		"*.log",
		"*.swp",
		"*.swo",
		"*.tmp",
		"*.bak",
		"*.patch",
		"*.diff",
		"*.orig",
	}
	visibleDotFiles = map[string]struct{}{
		".gitignore":     {},
		".gitattributes": {},
		".gitmodules":    {},
	}
	visibleDotDirectories = map[string]struct{}{
		".well-known": {},
	}
)

// nameSet splits a pattern list into exact names and wildcard globs.
type nameSet struct {
	exact map[string]struct{}
	globs []string
}

func newNameSet(patterns []string) nameSet {
	set := nameSet{exact: make(map[string]struct{}, len(patterns))}
	for _, pattern := range patterns {
		if isGlobPattern(pattern) {
			set.globs = append(set.globs, pattern)
			continue
		}
		set.exact[pattern] = struct{}{}
	}
	return set
}

func (set nameSet) contains(name string) bool {
	if _, found := set.exact[name]; found {
		return true
	}
	for _, glob := range set.globs {
		if globMatches(glob, name) {
			return true
		}
	}
	return false
}

var (
	defaultDirectorySet = newNameSet(fallbackExcludedDirectories)
	defaultFileSet      = newNameSet(fallbackExcludedFiles)
)
