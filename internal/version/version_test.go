package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.Contains(t, Short(), Version)
	assert.Contains(t, Short(), Revision)
	assert.Contains(t, Detailed(), "/")
	assert.True(t, strings.HasPrefix(DetailedWithApp(), AppName+" "))
}

func TestFillFromBuildInfo(t *testing.T) {
	origVersion, origRevision, origBuildDate := Version, Revision, BuildDate
	t.Cleanup(func() {
		Version, Revision, BuildDate = origVersion, origRevision, origBuildDate
	})

	t.Run("defaults replaced", func(t *testing.T) {
		Version, Revision, BuildDate = devVersion, "HEAD", "unknown"
		fillFromBuildInfo("v1.2.3", map[string]string{
			"vcs.revision": "0123456789abcdef",
			"vcs.modified": "true",
			"vcs.time":     "2025-01-01T00:00:00Z",
		})
		assert.Equal(t, "1.2.3", Version)
		assert.Equal(t, "0123456789ab-dirty", Revision)
		assert.Equal(t, "2025-01-01T00:00:00Z", BuildDate)
	})

	t.Run("ldflags values kept", func(t *testing.T) {
		Version, Revision, BuildDate = "2.0.0", "abc", "today"
		fillFromBuildInfo("(devel)", map[string]string{"vcs.revision": "ffff"})
		assert.Equal(t, "2.0.0", Version)
		assert.Equal(t, "abc", Revision)
		assert.Equal(t, "today", BuildDate)
	})
}
