package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// writeKeyFile writes a syntactically valid service account key whose
// token_uri points at tokenURL.
func writeKeyFile(t *testing.T, tokenURL string) string {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	key := map[string]string{
		"type":         "service_account",
		"project_id":   "test-project",
		"private_key":  string(keyPEM),
		"client_email": "robot@test-project.iam.gserviceaccount.com",
		"token_uri":    tokenURL,
	}
	data, err := json.Marshal(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestNewServiceAccountSource_MissingFile(t *testing.T) {
	_, err := NewServiceAccountSource(filepath.Join(t.TempDir(), "absent.json"), "")

	assert.ErrorIs(t, err, domain.ErrCredentialsNotFound)

	var notFound *domain.CredentialsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Path, "absent.json")
}

func TestNewServiceAccountSource_MalformedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := NewServiceAccountSource(path, "")
	assert.ErrorIs(t, err, domain.ErrCredentialsNotFound)
}

func TestServiceAccountSource_AccountKey(t *testing.T) {
	path := writeKeyFile(t, "https://oauth2.googleapis.com/token")

	src, err := NewServiceAccountSource(path, "")
	require.NoError(t, err)
	assert.Equal(t, "robot@test-project.iam.gserviceaccount.com", src.AccountKey())
	assert.False(t, src.Interactive())

	impersonating, err := NewServiceAccountSource(path, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", impersonating.AccountKey())
}

func TestServiceAccountSource_Obtain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.Form.Get("assertion"), "expected a signed JWT assertion")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "minted", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer srv.Close()

	src, err := NewServiceAccountSource(writeKeyFile(t, srv.URL), "user@example.com")
	require.NoError(t, err)

	scopes := []string{domain.ScopeGmailReadonly}
	cred, err := src.Obtain(context.Background(), scopes)
	require.NoError(t, err)

	assert.Equal(t, "minted", cred.AccessToken)
	assert.Equal(t, "user@example.com", cred.AccountKey)
	assert.Empty(t, cred.RefreshToken)
	assert.Equal(t, scopes, cred.Scopes)
}

func TestServiceAccountSource_ObtainRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized_client"}`))
	}))
	defer srv.Close()

	src, err := NewServiceAccountSource(writeKeyFile(t, srv.URL), "")
	require.NoError(t, err)

	_, err = src.Obtain(context.Background(), []string{domain.ScopeGmailReadonly})
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}
