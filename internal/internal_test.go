package internal

import (
	"fmt"
	"net/http"
	"os"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

func TestCharacterRune(t *testing.T) {
	req := require.New(t)
	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	r, err = CharacterRune("€")
	req.NoError(err)
	req.Equal('€', r)

	_, err = CharacterRune("")
	req.Error(err)
	_, err = CharacterRune("**")
	req.Error(err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{StorageBackend: BackendBadger, FeedLimit: 100}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.StorageBackend = "postgres" }},
		{"mongo without uri", func(c *Config) { c.StorageBackend = BackendMongo }},
		{"non positive feed limit", func(c *Config) { c.FeedLimit = 0 }},
		{"admin hash without secret", func(c *Config) { c.AdminPasswordHash = "$argon2id$..." }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestMessageMapper(t *testing.T) {
	req := require.New(t)
	row := MessageMapper("msg:0000000000000000001:6f1c2d3e-0000-0000-0000-000000000000",
		[]byte(`{"content":"hi","recipient":"you","cardColor":"#FF2E88"}`))
	req.Equal("MESSAGE", row.Type)
	req.Equal("6f1c2d3e", row.EntityID)
	req.Equal("#FF2E88", row.Colour)
	req.Equal("To you: hi", row.Detail)

	row = MessageMapper("idx:msg:abc", []byte("msg:1:abc"))
	req.Equal("INDEX", row.Type)
	req.Equal("msg:1:abc", row.Detail)
}

func TestInspectHandler(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("msg:0000000000000000001:abc"), []byte(`{"content":"hello","recipient":"world"}`))
	}))

	w := httptest.NewRecorder()
	InspectHandler(db, MessageMapper, "msg:", 10).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/inspect", nil))
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "To world: hello")
	req.Contains(w.Body.String(), "1 keys")
	req.Contains(w.Body.String(), fmt.Sprintf("pid %d", os.Getpid()))
}

func TestSelfStats(t *testing.T) {
	req := require.New(t)
	self, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	stats, err := SelfStats(self)
	req.NoError(err)
	req.Equal(int32(os.Getpid()), stats.PID)
	req.Positive(stats.RSSMiB)
	req.NotEmpty(stats.Status)
}
