package profiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarPath(t *testing.T) {
	n := newAvatarNamer()
	now := time.UnixMilli(1712345678901)

	p, err := n.path("u-1", "Foto.JPEG", now)
	require.NoError(t, err)
	assert.Regexp(t, `^public/u-1/1712345678901_[a-z0-9]{10,}\.jpeg$`, p)

	q, err := n.path("u-1", "Foto.JPEG", now)
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
}

func TestAvatarPathWithoutExtension(t *testing.T) {
	p, err := newAvatarNamer().path("u-1", "avatar", time.UnixMilli(1))
	require.NoError(t, err)
	assert.Regexp(t, `^public/u-1/1_[a-z0-9]+$`, p)
}
