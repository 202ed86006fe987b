package feedback

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	salt    = []byte("vidtrack.core.feedback.token")
	NowFunc = time.Now // mockable

	b32     = base32.StdEncoding.WithPadding(base32.NoPadding)
	refDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

	// errors
	ErrInvalidLink = errors.New("invalid feedback link")
	ErrLinkExpired = errors.New("feedback link expired")
)

// linkSigner signs feedback links for a lecturer and a project.
type linkSigner struct {
	secretKey []byte
	timeout   time.Duration
}

// EncodeUID base64 encodes the project and lecturer ids of a link.
func EncodeUID(projectID, lecturerID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(projectID + ":" + lecturerID))
}

// DecodeUID returns the project and lecturer ids encoded in uid.
func DecodeUID(uid string) (string, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", "", ErrInvalidLink
	}
	parts := strings.SplitN(string(b), ":", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidLink
	}
	return parts[0], parts[1], nil
}

// makeToken generates a feedback token for the lecturer of a project.
// Changing the lecturer's email invalidates their links.
func (ls linkSigner) makeToken(projectID, lecturerID, lecturerEmail string) (string, error) {
	return ls.makeTokenWithTimestamp(projectID, lecturerID, lecturerEmail, numDaysSince2001(NowFunc()))
}

func (ls linkSigner) verifyToken(projectID, lecturerID, lecturerEmail, token string) error {
	if token == "" {
		return ErrInvalidLink
	}
	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidLink
	}

	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidLink
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidLink
	}

	// check that token has not been tampered with
	newToken, err := ls.makeTokenWithTimestamp(projectID, lecturerID, lecturerEmail, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return ErrInvalidLink
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(NowFunc()) - ts) > ls.timeoutDays() {
		return ErrLinkExpired
	}
	return nil
}

func (ls linkSigner) timeoutDays() int {
	return int(ls.timeout / (24 * time.Hour))
}

// expiresAt is the last instant a token stamped with ts still verifies.
func (ls linkSigner) expiresAt(ts int) time.Time {
	return refDate.AddDate(0, 0, ts+ls.timeoutDays())
}

func (ls linkSigner) makeTokenWithTimestamp(projectID, lecturerID, lecturerEmail string, ts int) (string, error) {
	tsB32 := b32.EncodeToString([]byte(strconv.Itoa(ts)))
	sig, err := ls.sign(hashValue(projectID, lecturerID, lecturerEmail, ts))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", tsB32, sig), nil
}

func (ls linkSigner) sign(val []byte) (string, error) {
	key := sha256.Sum256(append(append([]byte{}, salt...), ls.secretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func numDaysSince2001(t time.Time) int {
	return int(math.Ceil(t.Sub(refDate).Hours() / 24))
}

func hashValue(projectID, lecturerID, lecturerEmail string, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(projectID)
	val.WriteString(lecturerID)
	val.WriteString(lecturerEmail)
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
