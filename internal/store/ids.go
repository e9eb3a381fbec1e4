package store

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Artifact names are UUID tokens plus an extension; derived artifacts carry a
// "transformed-" prefix and always end in .mp3. The grammar admits exactly
// those shapes, which makes path traversal impossible by construction.
var idPattern = regexp.MustCompile(
	`^(transformed-)?[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(\.[A-Za-z0-9]{1,8})?$`,
)

// allowedMIMEs is the explicit ingest allow-list; anything else with an
// audio/ prefix is also accepted (browser recorders report varied subtypes).
var allowedMIMEs = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/wav":   {},
	"audio/mp3":   {},
	"audio/x-m4a": {},
	"audio/m4a":   {},
	"audio/ogg":   {},
	"audio/webm":  {},
	"audio/mp4":   {},
}

var mimeToExt = map[string]string{
	"audio/webm": ".webm",
	"audio/mpeg": ".mp3",
	"audio/mp3":  ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/mp4":  ".m4a",
	"audio/m4a":  ".m4a",
}

// ValidID reports whether id satisfies the artifact token grammar.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// AllowedMIME reports whether a declared content type is audio-like.
func AllowedMIME(mime string) bool {
	mime = normalizeMIME(mime)
	if _, ok := allowedMIMEs[mime]; ok {
		return true
	}
	return strings.HasPrefix(mime, "audio/")
}

// NewDerivedID allocates a fresh derived artifact id. Derived output is always
// named .mp3 regardless of the source container; the engine picks its encoder
// from that suffix.
func NewDerivedID() string {
	return "transformed-" + uuid.NewString() + ".mp3"
}

func extensionFor(declaredName, declaredMIME string) string {
	if ext := filepath.Ext(declaredName); ext != "" && len(ext) <= 9 && idPatternExtOK(ext) {
		return strings.ToLower(ext)
	}
	if ext, ok := mimeToExt[normalizeMIME(declaredMIME)]; ok {
		return ext
	}
	return ".webm"
}

func idPatternExtOK(ext string) bool {
	for _, r := range ext[1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return len(ext) > 1
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	// Strip parameters such as "; codecs=opus".
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
