package utils

import (
    "bytes"
    "encoding/json"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("s3cret", 42, "MANAGER", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

    claims, err := ParseAccessToken("s3cret", tok.Token)
    require.NoError(t, err)
    assert.Equal(t, "MANAGER", claims.Role)
    id, err := claims.UserID()
    require.NoError(t, err)
    assert.EqualValues(t, 42, id)
}

func TestParseAccessToken_Rejects(t *testing.T) {
    tok, err := NewAccessToken("s3cret", 1, "RECEPTION", 15)
    require.NoError(t, err)
    _, err = ParseAccessToken("other", tok.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    expired, err := NewAccessToken("s3cret", 1, "RECEPTION", -5)
    require.NoError(t, err)
    _, err = ParseAccessToken("s3cret", expired.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    _, err = ParseAccessToken("s3cret", "not.a.token")
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
    a, err := NewRefreshToken(7)
    require.NoError(t, err)
    b, err := NewRefreshToken(7)
    require.NoError(t, err)

    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
    assert.Len(t, HashRefreshRaw(a.Raw), 64)
}

func TestPasswords(t *testing.T) {
    hash, err := HashPassword("front-desk", bcrypt.MinCost)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "front-desk"))
    assert.False(t, VerifyPassword(hash, "front-desk!"))
}

func TestClampCost(t *testing.T) {
    assert.Equal(t, bcrypt.DefaultCost, ClampCost(0))
    assert.Equal(t, bcrypt.MaxCost, ClampCost(99))
    assert.Equal(t, 12, ClampCost(12))
}

func TestNewLogger(t *testing.T) {
    var buf bytes.Buffer
    l := newLogger(&buf, "debug", "json")
    assert.Equal(t, logrus.DebugLevel, l.GetLevel())

    l.WithField("room_id", 101).Info("checked in")
    var line map[string]any
    require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
    assert.Equal(t, "checked in", line["msg"])
    assert.EqualValues(t, 101, line["room_id"])

    buf.Reset()
    l = newLogger(&buf, "loud", "text")
    assert.Equal(t, logrus.InfoLevel, l.GetLevel())
    l.Info("plain")
    assert.Contains(t, buf.String(), "msg=plain")
}
