package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

func signInitData(t *testing.T, token string, values map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	q.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return q.Encode()
}

func TestInitDataValidator_Parse(t *testing.T) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	old := strconv.FormatInt(time.Now().Add(-48*time.Hour).Unix(), 10)
	user := `{"id":42,"first_name":"Ann","username":"ann"}`

	tests := []struct {
		name    string
		token   string
		raw     func(t *testing.T) string
		wantID  int64
		wantErr bool
	}{
		{
			name:  "Valid init data",
			token: testBotToken,
			raw: func(t *testing.T) string {
				return signInitData(t, testBotToken, map[string]string{"auth_date": now, "query_id": "q1", "user": user})
			},
			wantID: 42,
		},
		{
			name:  "Signed with another bot token",
			token: testBotToken,
			raw: func(t *testing.T) string {
				return signInitData(t, "654321:OTHER", map[string]string{"auth_date": now, "user": user})
			},
			wantErr: true,
		},
		{
			name:  "Expired",
			token: testBotToken,
			raw: func(t *testing.T) string {
				return signInitData(t, testBotToken, map[string]string{"auth_date": old, "user": user})
			},
			wantErr: true,
		},
		{
			name:  "Not configured",
			token: "",
			raw: func(t *testing.T) string {
				return signInitData(t, testBotToken, map[string]string{"auth_date": now, "user": user})
			},
			wantErr: true,
		},
		{
			name:    "Empty payload",
			token:   testBotToken,
			raw:     func(*testing.T) string { return "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewInitDataValidator(tt.token, 24*time.Hour)
			got, err := v.Parse(tt.raw(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, "ann", got.Username)
		})
	}
}
