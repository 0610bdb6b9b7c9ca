package workspace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ben-ranford/d7audit/internal/safeio"
)

var (
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentPattern  = regexp.MustCompile(`(?m)^\s*(//|#).*$`)
	databasesPattern    = regexp.MustCompile(`\$databases\b`)
	credentialPattern   = regexp.MustCompile(`['"](database|username|password|host|port|driver)['"]\s*=>\s*(?:'([^']*)'|"([^"]*)"|(\d+))`)
)

// Settings holds the default connection declared in settings.php.
type Settings struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// ReadSettings extracts the first database connection declared through
// $databases in sites/default/settings.php. Commented-out examples are
// ignored. ok is false when the file is missing or names no database.
func ReadSettings(layout Layout) (Settings, bool) {
	content := safeio.ReadTextUnder(layout.Docroot, layout.Settings())
	if content == "" {
		return Settings{}, false
	}
	return ParseSettings(content)
}

func ParseSettings(content string) (Settings, bool) {
	content = blockCommentPattern.ReplaceAllString(content, "")
	content = lineCommentPattern.ReplaceAllString(content, "")

	start := databasesPattern.FindStringIndex(content)
	if start == nil {
		return Settings{}, false
	}

	values := make(map[string]string)
	for _, match := range credentialPattern.FindAllStringSubmatch(content[start[0]:], -1) {
		key := match[1]
		if _, seen := values[key]; seen {
			continue
		}
		values[key] = match[2] + match[3] + match[4]
	}
	if values["database"] == "" {
		return Settings{}, false
	}

	settings := Settings{
		Driver:   values["driver"],
		Host:     values["host"],
		Name:     values["database"],
		User:     values["username"],
		Password: values["password"],
	}
	if port, err := strconv.Atoi(strings.TrimSpace(values["port"])); err == nil {
		settings.Port = port
	}
	return settings, true
}
