package widgettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid widget session token")

// Codec signs session ids handed to the embedded widget, so a submit can
// only reference a session this service created.
type Codec struct {
	Secret []byte
}

func New(secret []byte) *Codec {
	return &Codec{Secret: secret}
}

// token format: sessionID.base64(hmac(sessionID))
func (c *Codec) Encode(sessionID string) string {
	return sessionID + "." + sign(c.Secret, sessionID)
}

func (c *Codec) Decode(v string) (string, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 2 {
		return "", ErrInvalid
	}
	id := parts[0]
	if id == "" {
		return "", ErrInvalid
	}
	if !verify(c.Secret, id, parts[1]) {
		return "", ErrInvalid
	}
	return id, nil
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
