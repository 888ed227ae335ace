package profiles

import (
	"fmt"
	"math/rand/v2"
	"path"
	"strings"
	"time"

	"github.com/speps/go-hashids/v2"
)

// avatarNamer builds public/<user id>/<unix millis>_<token><ext> paths.
type avatarNamer struct {
	hd *hashids.HashIDData
}

func newAvatarNamer() *avatarNamer {
	hd := hashids.NewData()
	hd.Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	hd.MinLength = 10
	hd.Salt = "avatars"
	return &avatarNamer{hd: hd}
}

func (n *avatarNamer) token() (string, error) {
	h, err := hashids.NewWithData(n.hd)
	if err != nil {
		return "", err
	}
	return h.EncodeInt64([]int64{rand.Int64N(1 << 52)})
}

func (n *avatarNamer) path(userID, fileName string, now time.Time) (string, error) {
	tok, err := n.token()
	if err != nil {
		return "", fmt.Errorf("avatar token: %w", err)
	}
	return fmt.Sprintf("public/%s/%d_%s%s", userID, now.UnixMilli(), tok, strings.ToLower(path.Ext(fileName))), nil
}
