package uploader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildObjectKeyDefaultTemplate(t *testing.T) {
	key := BuildObjectKey("", "banners", "Hero Image.PNG", []byte("payload"))

	require.True(t, strings.HasPrefix(key, "banners/"), key)
	require.True(t, strings.HasSuffix(key, ".png"), key)
	require.Contains(t, key, time.Now().Format("2006"))
	require.NotContains(t, key, "//")
	require.NotContains(t, key, " ")
}

func TestBuildObjectKeyTokens(t *testing.T) {
	key := BuildObjectKey("{filename}-{md5-16}.{ext}", "dishes/gallery", "idli.jpg", []byte("abc"))

	require.True(t, strings.HasPrefix(key, "dishes/gallery/idli-"), key)
	require.True(t, strings.HasSuffix(key, ".jpg"), key)
}

func TestBuildObjectKeyStripsUnsafeSegments(t *testing.T) {
	key := BuildObjectKey("{uuid}.{ext}", "../etc//passwd", "logo.png", nil)
	require.False(t, strings.Contains(key, ".."), key)
	require.True(t, strings.HasPrefix(key, "etc/passwd/"), key)
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		formats  string
		maxMB    int
		wantErr  string
	}{
		{"ok any format", "a.png", 100, "", 5, ""},
		{"ok allowed", "a.jpg", 100, "png,jpg,webp", 5, ""},
		{"missing extension", "noext", 100, "", 5, "image format is required"},
		{"too large", "a.png", 6 << 20, "", 5, "image size exceeds 5MB"},
		{"format not allowed", "a.gif", 100, "png,jpg", 5, "image format .gif is not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.filename, tt.size, tt.formats, tt.maxMB)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestDetectContentType(t *testing.T) {
	require.Equal(t, "image/png", DetectContentType("a.png", nil))
	require.Equal(t, "application/octet-stream", DetectContentType("", nil))
}
