package secretmanager

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// fakeClient mimics the Secret Manager API surface the store uses: secrets
// hold a stack of versions and absent names return gRPC NotFound.
type fakeClient struct {
	secrets     map[string][][]byte
	createCalls int
	closed      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{secrets: make(map[string][][]byte)}
}

func (f *fakeClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	// Strip the "/versions/latest" suffix.
	name := req.Name[:len(req.Name)-len("/versions/latest")]
	versions, ok := f.secrets[name]
	if !ok || len(versions) == 0 {
		return nil, status.Error(codes.NotFound, "secret not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: versions[len(versions)-1]},
	}, nil
}

func (f *fakeClient) AddSecretVersion(_ context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	versions, ok := f.secrets[req.Parent]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}
	f.secrets[req.Parent] = append(versions, req.Payload.Data)
	return &secretmanagerpb.SecretVersion{}, nil
}

func (f *fakeClient) CreateSecret(_ context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
	f.createCalls++
	name := req.Parent + "/secrets/" + req.SecretId
	if _, ok := f.secrets[name]; ok {
		return nil, status.Error(codes.AlreadyExists, "secret exists")
	}
	f.secrets[name] = [][]byte{}
	return &secretmanagerpb.Secret{Name: name}, nil
}

func (f *fakeClient) DeleteSecret(_ context.Context, req *secretmanagerpb.DeleteSecretRequest) error {
	if _, ok := f.secrets[req.Name]; !ok {
		return status.Error(codes.NotFound, "secret not found")
	}
	delete(f.secrets, req.Name)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func setupTestStore() (*Store, *fakeClient) {
	client := newFakeClient()
	return newStoreWithClient(client, "test-project", "gsuite-token"), client
}

func testCredential() domain.Credential {
	return domain.Credential{
		AccountKey:   "user@example.com",
		AccessToken:  "A1",
		RefreshToken: "R1",
		TokenType:    domain.TokenTypeBearer,
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Scopes:       []string{domain.ScopeGmailReadonly},
	}
}

func TestStore_SaveCreatesSecretOnFirstUse(t *testing.T) {
	store, client := setupTestStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testCredential()))
	assert.Equal(t, 1, client.createCalls)

	// A second save adds a version without re-creating the secret.
	require.NoError(t, store.Save(ctx, testCredential()))
	assert.Equal(t, 1, client.createCalls)
	assert.Len(t, client.secrets["projects/test-project/secrets/gsuite-token-user-example-com"], 2)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _ := setupTestStore()
	ctx := context.Background()

	in := testCredential()
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, in.RefreshToken, out.RefreshToken)
	assert.True(t, in.Expiry.Equal(out.Expiry))
}

func TestStore_LoadReadsLatestVersion(t *testing.T) {
	store, _ := setupTestStore()
	ctx := context.Background()

	first := testCredential()
	require.NoError(t, store.Save(ctx, first))

	second := testCredential()
	second.AccessToken = "A2"
	require.NoError(t, store.Save(ctx, second))

	out, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A2", out.AccessToken)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := setupTestStore()

	out, err := store.Load(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, out, "missing secret is (nil, nil), not an error")
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupTestStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testCredential()))
	require.NoError(t, store.Delete(ctx, "user@example.com"))

	out, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store, _ := setupTestStore()

	assert.NoError(t, store.Delete(context.Background(), "nobody@example.com"))
}

func TestStore_SaveRequiresAccountKey(t *testing.T) {
	store, _ := setupTestStore()

	err := store.Save(context.Background(), domain.Credential{AccessToken: "A1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSecretID_Sanitisation(t *testing.T) {
	store, _ := setupTestStore()

	tests := []struct {
		accountKey string
		want       string
	}{
		{"user@example.com", "gsuite-token-user-example-com"},
		{"robot@proj.iam.gserviceaccount.com", "gsuite-token-robot-proj-iam-gserviceaccount-com"},
		{"plain", "gsuite-token-plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.secretID(tt.accountKey))
	}
}

func TestStore_Close(t *testing.T) {
	store, client := setupTestStore()

	require.NoError(t, store.Close())
	assert.True(t, client.closed)
}
