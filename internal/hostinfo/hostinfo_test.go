package hostinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	info := Current()

	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	t.Logf("host: %s/%s kernel=%q", info.OS, info.Arch, info.Kernel)

	if runtime.GOOS == "linux" {
		assert.NotEmpty(t, info.Kernel)
	}
}
