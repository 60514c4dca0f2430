package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	updates    [][][]any
	requests   []string
	failWrites int
	mu         sync.Mutex
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		_, _ = w.Write([]byte(`{"spreadsheetId":"new-sheet","spreadsheetUrl":"https://example.com/new-sheet"}`))
	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"spreadsheetId":"existing","sheets":[{"properties":{"sheetId":7,"title":"Transacciones"}}]}`))
	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/values/"):
		if f.failWrites > 0 {
			f.failWrites--
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"backend error"}}`))
			return
		}
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates = append(f.updates, vr.Values)
		_, _ = w.Write([]byte(`{}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeSheets) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newFakeWriter(t *testing.T, fake *fakeSheets, cfg SheetsConfig) *SheetsWriter {
	t.Helper()

	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	return newSheetsWriter(svc, cfg)
}

func TestSheetsWriter_Write(t *testing.T) {
	fake := &fakeSheets{}
	cfg := DefaultSheetsConfig()
	cfg.BatchSize = 3
	cfg.RetryDelay = time.Millisecond

	w := newFakeWriter(t, fake, cfg)
	var progress [][2]int
	w.OnBatch = func(written, total int) { progress = append(progress, [2]int{written, total}) }

	report := NewReport(sampleTransactions(5), time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC))
	id, err := w.Write(context.Background(), report)
	require.NoError(t, err)

	assert.Equal(t, "new-sheet", id)
	assert.Equal(t, 1, fake.count("POST /v4/spreadsheets")-fake.count("POST /v4/spreadsheets/"))

	// 8 header rows + 5 transactions in batches of 3.
	require.Len(t, fake.updates, 5)
	assert.Equal(t, "Historial de Transacciones", fake.updates[0][0][0])
	assert.Equal(t, [2]int{13, 13}, progress[len(progress)-1])

	last := fake.updates[4][0]
	assert.Equal(t, []any{"2024-10-03", "Sueldo", "Trabajo", "T-1", "1234.50", "Ingreso", "ARS"}, last)
}

func TestSheetsWriter_Write_ExistingSpreadsheet(t *testing.T) {
	fake := &fakeSheets{}
	cfg := DefaultSheetsConfig()
	cfg.SpreadsheetID = "existing"
	cfg.EnableFormatting = false

	w := newFakeWriter(t, fake, cfg)
	id, err := w.Write(context.Background(), NewReport(sampleTransactions(1), time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "existing", id)
	assert.Equal(t, 1, fake.count("GET "))
	assert.Zero(t, fake.count("POST /v4/spreadsheets/existing:batchUpdate"))
}

func TestSheetsWriter_Write_RetriesTransientFailures(t *testing.T) {
	fake := &fakeSheets{failWrites: 2}
	cfg := DefaultSheetsConfig()
	cfg.SpreadsheetID = "existing"
	cfg.EnableFormatting = false
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond

	w := newFakeWriter(t, fake, cfg)
	_, err := w.Write(context.Background(), NewReport(sampleTransactions(1), time.Now()))
	require.NoError(t, err)
	assert.Len(t, fake.updates, 1)
}

func TestSheetsWriter_Write_GivesUp(t *testing.T) {
	fake := &fakeSheets{failWrites: 10}
	cfg := DefaultSheetsConfig()
	cfg.SpreadsheetID = "existing"
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond

	w := newFakeWriter(t, fake, cfg)
	_, err := w.Write(context.Background(), NewReport(sampleTransactions(1), time.Now()))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestSheetsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SheetsConfig)
		wantErr error
	}{
		{
			name: "oauth with refresh token",
			mutate: func(c *SheetsConfig) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "refresh"
			},
		},
		{
			name: "oauth with token file",
			mutate: func(c *SheetsConfig) {
				c.ClientID, c.ClientSecret, c.TokenFile = "id", "secret", "/tmp/token.json"
			},
		},
		{
			name:   "service account",
			mutate: func(c *SheetsConfig) { c.ServiceAccountPath = "/path/key.json" },
		},
		{
			name:    "missing auth",
			mutate:  func(*SheetsConfig) {},
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "both methods",
			mutate: func(c *SheetsConfig) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "refresh"
				c.ServiceAccountPath = "/path/key.json"
			},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name: "bad batch size",
			mutate: func(c *SheetsConfig) {
				c.ServiceAccountPath = "/path/key.json"
				c.BatchSize = 0
			},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name: "negative retries",
			mutate: func(c *SheetsConfig) {
				c.ServiceAccountPath = "/path/key.json"
				c.RetryAttempts = -1
			},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSheetsConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := t.TempDir() + "/google/token.json"

	cfg := DefaultSheetsConfig()
	cfg.ClientID, cfg.ClientSecret, cfg.TokenFile = "id", "secret", path

	_, err := tokenSource(context.Background(), cfg)
	require.Error(t, err, "no stored token yet")

	require.NoError(t, SaveToken(path, tokenFixture()))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh-me", loaded.RefreshToken)

	_, err = tokenSource(context.Background(), cfg)
	assert.NoError(t, err)
}

func tokenFixture() *oauth2.Token {
	return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh-me", TokenType: "Bearer"}
}
