package format

import (
	"regexp"
	"strings"
)

// DefaultFilename is returned by SanitizeFilename when nothing usable is left.
const DefaultFilename = "default_service"

var (
	separatorRun  = regexp.MustCompile(`[` + spaceClass + `/\\:]+`)
	unsafeFileChr = regexp.MustCompile(`[<>"/\\|?*\x00-\x1f]`)
)

// SanitizeFilename turns a service display name into a base filename that is
// safe on common filesystems. Distinct names may still collide.
func SanitizeFilename(name string) string {
	name = separatorRun.ReplaceAllString(name, "_")
	name = unsafeFileChr.ReplaceAllString(name, "")
	name = strings.Trim(name, "_")
	if name == "" {
		return DefaultFilename
	}
	return name
}
