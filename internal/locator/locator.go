package locator

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nikbrunner/bmtag/internal/model"
)

// Format is the on-disk format of a bookmark store.
type Format int

const (
	FormatChromium Format = iota // JSON `Bookmarks` file
	FormatSafari                 // binary property list
	FormatFirefox                // places.sqlite
	FormatHTML                   // Netscape bookmark HTML export
)

// Source is one discovered bookmark store.
type Source struct {
	Browser model.Browser
	Profile string
	Path    string
	Format  Format
}

// Key identifies the source in per-store reports: the lowercase browser
// name, suffixed with the profile for anything but the default one.
func (s Source) Key() string {
	key := strings.ToLower(string(s.Browser))
	if s.Profile != "" && s.Profile != "Default" {
		key += ":" + s.Profile
	}
	return key
}

// Env describes where to look for bookmark stores.
type Env struct {
	Home        string
	GOOS        string
	Profiles    []string
	ImportFiles []string
}

type chromiumBrowser struct {
	browser model.Browser
	base    string
}

// Discover returns every bookmark store that exists for env. Stores that are
// not present are skipped without error.
func Discover(env Env) []Source {
	var sources []Source

	bases := chromiumBases(env.Home, env.GOOS)
	for _, profile := range env.Profiles {
		for _, b := range bases {
			path := filepath.Join(b.base, profile, "Bookmarks")
			if fileExists(path) {
				sources = append(sources, Source{Browser: b.browser, Profile: profile, Path: path, Format: FormatChromium})
			}
		}
	}

	if env.GOOS == "darwin" {
		path := filepath.Join(env.Home, "Library", "Safari", "Bookmarks.plist")
		if fileExists(path) {
			sources = append(sources, Source{Browser: model.Safari, Path: path, Format: FormatSafari})
		}
	}

	sources = append(sources, firefoxSources(env.Home, env.GOOS)...)

	for _, path := range env.ImportFiles {
		if fileExists(path) {
			sources = append(sources, Source{Browser: model.Imported, Profile: filepath.Base(path), Path: path, Format: FormatHTML})
		}
	}

	return sources
}

// chromiumBases returns the per-OS user data directories of Chrome and Edge.
func chromiumBases(home, goos string) []chromiumBrowser {
	switch goos {
	case "windows":
		local := filepath.Join(home, "AppData", "Local")
		return []chromiumBrowser{
			{model.Chrome, filepath.Join(local, "Google", "Chrome", "User Data")},
			{model.Edge, filepath.Join(local, "Microsoft", "Edge", "User Data")},
		}
	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		return []chromiumBrowser{
			{model.Chrome, filepath.Join(support, "Google", "Chrome")},
			{model.Edge, filepath.Join(support, "Microsoft Edge")},
		}
	case "linux":
		config := filepath.Join(home, ".config")
		return []chromiumBrowser{
			{model.Chrome, filepath.Join(config, "google-chrome")},
			{model.Edge, filepath.Join(config, "microsoft-edge")},
		}
	default:
		return nil
	}
}

// firefoxSources finds places.sqlite in every Firefox profile directory.
func firefoxSources(home, goos string) []Source {
	var root string
	switch goos {
	case "windows":
		root = filepath.Join(home, "AppData", "Roaming", "Mozilla", "Firefox", "Profiles")
	case "darwin":
		root = filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles")
	case "linux":
		root = filepath.Join(home, ".mozilla", "firefox")
	default:
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(root, "*", "places.sqlite"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	sources := make([]Source, 0, len(matches))
	for _, path := range matches {
		sources = append(sources, Source{
			Browser: model.Firefox,
			Profile: filepath.Base(filepath.Dir(path)),
			Path:    path,
			Format:  FormatFirefox,
		})
	}
	return sources
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
