package uploader

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuildObjectKey expands the key template with date, hash and uuid tokens
// under the logical path prefix.
func BuildObjectKey(template, logicalPath, originalName string, payload []byte) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = "{Y}/{m}/{uuid}.{ext}"
	}

	now := time.Now()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), ".")
	if ext == "" {
		ext = "dat"
	}

	filename := strings.TrimSuffix(filepath.Base(strings.TrimSpace(originalName)), filepath.Ext(strings.TrimSpace(originalName)))
	if strings.TrimSpace(filename) == "" {
		filename = "file"
	}

	sum := md5.Sum(payload)
	md5Hex := hex.EncodeToString(sum[:])
	uuidValue := strings.ReplaceAll(uuid.NewString(), "-", "")

	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{timestamp}", strconv.FormatInt(now.Unix(), 10),
		"{uuid}", uuidValue,
		"{md5}", md5Hex,
		"{md5-16}", md5Hex[:16],
		"{filename}", filename,
		"{ext}", ext,
	)
	key := replacer.Replace(tpl)

	prefix := cleanSegmentPath(logicalPath)
	if prefix != "" {
		key = prefix + "/" + key
	}

	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		key = fmt.Sprintf("%s/%s/%s.%s", now.Format("2006"), now.Format("01"), uuidValue, ext)
	}
	return key
}

// ValidateImage checks extension and size against the configured limits.
func ValidateImage(filename string, size int64, allowedFormats string, maxSizeMB int) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
	if ext == "" {
		return fmt.Errorf("image format is required")
	}
	if maxSizeMB > 0 && size > int64(maxSizeMB)*1024*1024 {
		return fmt.Errorf("image size exceeds %dMB", maxSizeMB)
	}

	allowSet := make(map[string]struct{})
	for _, item := range strings.Split(allowedFormats, ",") {
		item = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(item)), ".")
		if item == "" {
			continue
		}
		allowSet[item] = struct{}{}
	}
	if len(allowSet) == 0 {
		return nil
	}
	if _, ok := allowSet[ext]; !ok {
		return fmt.Errorf("image format .%s is not allowed", ext)
	}
	return nil
}

// DetectContentType sniffs the MIME type from the extension or payload bytes.
func DetectContentType(filename string, payload []byte) string {
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}

// cleanSegmentPath keeps only safe path segments of a logical path.
func cleanSegmentPath(raw string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(raw), "/"), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || !isSafeSegment(p) {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return strings.Join(out, "/")
}

// isSafeSegment returns true when s contains only alphanumerics, hyphens,
// underscores, or dots.
func isSafeSegment(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}
