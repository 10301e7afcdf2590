package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"time"
)

const (
	// StorageKey holds the JSON session record.
	StorageKey = "edu_session"
	// TimestampKey holds createdAt as a decimal millisecond string.
	TimestampKey = "edu_session_timestamp"

	DefaultValidity = 24 * time.Hour
)

var userCodePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Session is the record kept in client storage. Timestamps are epoch milliseconds.
type Session struct {
	UserCode   string `json:"userCode"`
	CreatedAt  int64  `json:"createdAt"`
	LastActive int64  `json:"lastActive"`
	Checksum   string `json:"checksum"`
}

func ValidUserCode(code string) bool {
	return userCodePattern.MatchString(code)
}

// Checksum derives the integrity tag for a session. It only detects
// accidental corruption or casual edits: any client holding the secret
// can recompute it.
func Checksum(secret []byte, userCode string, createdAt int64) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(userCode))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strconv.FormatInt(createdAt, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func New(secret []byte, userCode string, now time.Time) Session {
	ms := now.UnixMilli()
	return Session{
		UserCode:   userCode,
		CreatedAt:  ms,
		LastActive: ms,
		Checksum:   Checksum(secret, userCode, ms),
	}
}

func (s Session) ChecksumValid(secret []byte) bool {
	expected := Checksum(secret, s.UserCode, s.CreatedAt)
	return hmac.Equal([]byte(expected), []byte(s.Checksum))
}

// Remaining is validity minus the session age, floored at zero.
func (s Session) Remaining(validity time.Duration, now time.Time) time.Duration {
	age := now.Sub(time.UnixMilli(s.CreatedAt))
	left := validity - age
	if left < 0 {
		return 0
	}
	return left
}

func (s Session) Expired(validity time.Duration, now time.Time) bool {
	return now.Sub(time.UnixMilli(s.CreatedAt)) > validity
}
