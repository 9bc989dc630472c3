package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// codeEpoch keeps the base36 timestamps short.
var codeEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

const codeSalt = "yamdb.confirmation-code"

// CodeSubject is the part of an account a confirmation code is bound to.
// Changing any of it invalidates every outstanding code.
type CodeSubject struct {
	UserID       string
	PasswordHash string
	Email        string
	LastLogin    *time.Time
}

// CodeGenerator makes and checks stateless confirmation codes of the form
// "<base36 seconds>-<hex hmac>". Nothing is stored server side.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (g *CodeGenerator) WithClock(now func() time.Time) *CodeGenerator {
	g.now = now
	return g
}

func (g *CodeGenerator) Make(s CodeSubject) string {
	return g.makeAt(s, g.seconds(g.now()))
}

// Check reports whether code was made for s in its current state and is not
// older than the configured TTL.
func (g *CodeGenerator) Check(s CodeSubject, code string) bool {
	if s.UserID == "" || code == "" {
		return false
	}
	tsPart, _, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}
	if !hmac.Equal([]byte(g.makeAt(s, ts)), []byte(code)) {
		return false
	}
	age := time.Duration(g.seconds(g.now())-ts) * time.Second
	return age <= g.ttl
}

func (g *CodeGenerator) seconds(t time.Time) int64 {
	return int64(t.Sub(codeEpoch) / time.Second)
}

func (g *CodeGenerator) makeAt(s CodeSubject, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(codeSalt))
	mac.Write([]byte(s.UserID))
	mac.Write([]byte(s.PasswordHash))
	if s.LastLogin != nil {
		mac.Write([]byte(s.LastLogin.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)))
	}
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte(s.Email))
	return strconv.FormatInt(ts, 36) + "-" + hex.EncodeToString(mac.Sum(nil))
}
