// Package secretmanager persists credential records in Google Secret
// Manager, one secret per account key with the record stored as a JSON
// payload. New versions are added on every save; loads always read the
// latest version.
package secretmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	secretmanagerapi "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// Ensure Store implements the token store interface.
var _ driven.TokenStore = (*Store)(nil)

// secretClient is the slice of the Secret Manager API the store needs.
// Narrowed to an interface so tests can substitute a fake.
type secretClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error)
	DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest) error
	Close() error
}

// gcpClient adapts the real SDK client to secretClient.
type gcpClient struct {
	c *secretmanagerapi.Client
}

func (g *gcpClient) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return g.c.AccessSecretVersion(ctx, req)
}

func (g *gcpClient) AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	return g.c.AddSecretVersion(ctx, req)
}

func (g *gcpClient) CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
	return g.c.CreateSecret(ctx, req)
}

func (g *gcpClient) DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest) error {
	return g.c.DeleteSecret(ctx, req)
}

func (g *gcpClient) Close() error {
	return g.c.Close()
}

// Store is a Secret Manager backed TokenStore.
type Store struct {
	client    secretClient
	projectID string
	prefix    string
}

// NewStore creates a store over the given GCP project. prefix namespaces
// the secrets this store manages; it must not be empty.
func NewStore(ctx context.Context, projectID, prefix string) (*Store, error) {
	if projectID == "" || prefix == "" {
		return nil, fmt.Errorf("secret manager store requires a project id and prefix: %w", domain.ErrInvalidInput)
	}

	client, err := secretmanagerapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}

	return newStoreWithClient(&gcpClient{c: client}, projectID, prefix), nil
}

func newStoreWithClient(client secretClient, projectID, prefix string) *Store {
	return &Store{client: client, projectID: projectID, prefix: prefix}
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load reads the latest version of the account's secret.
// Returns (nil, nil) when the secret does not exist.
func (s *Store) Load(ctx context.Context, accountKey string) (*domain.Credential, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.versionPath(accountKey, "latest"),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, s.storageErr(accountKey, "load", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(resp.Payload.Data, &cred); err != nil {
		return nil, s.storageErr(accountKey, "load", fmt.Errorf("unmarshalling record: %w", err))
	}
	if cred.AccountKey == "" {
		cred.AccountKey = accountKey
	}
	return &cred, nil
}

// Save adds a new version to the account's secret, creating the secret on
// first use.
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	if cred.AccountKey == "" {
		return fmt.Errorf("credential has no account key: %w", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return s.storageErr(cred.AccountKey, "save", fmt.Errorf("marshalling record: %w", err))
	}

	req := &secretmanagerpb.AddSecretVersionRequest{
		Parent:  s.secretPath(cred.AccountKey),
		Payload: &secretmanagerpb.SecretPayload{Data: data},
	}

	if _, err := s.client.AddSecretVersion(ctx, req); err != nil {
		if status.Code(err) != codes.NotFound {
			return s.storageErr(cred.AccountKey, "save", err)
		}

		if err := s.createSecret(ctx, cred.AccountKey); err != nil {
			return s.storageErr(cred.AccountKey, "save", err)
		}
		if _, err := s.client.AddSecretVersion(ctx, req); err != nil {
			return s.storageErr(cred.AccountKey, "save", err)
		}
	}
	return nil
}

// Delete destroys the account's secret and all its versions. Deleting a
// missing secret is not an error.
func (s *Store) Delete(ctx context.Context, accountKey string) error {
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: s.secretPath(accountKey),
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return s.storageErr(accountKey, "delete", err)
	}
	return nil
}

func (s *Store) createSecret(ctx context.Context, accountKey string) error {
	logger.Debug("creating secret %s in project %s", s.secretID(accountKey), s.projectID)

	_, err := s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
		Parent:   "projects/" + s.projectID,
		SecretId: s.secretID(accountKey),
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return err
	}
	return nil
}

// secretID derives a valid secret name from the account key. Secret names
// only allow [A-Za-z0-9_-].
func (s *Store) secretID(accountKey string) string {
	sanitised := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, accountKey)
	return s.prefix + "-" + sanitised
}

func (s *Store) secretPath(accountKey string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID(accountKey))
}

func (s *Store) versionPath(accountKey, version string) string {
	return s.secretPath(accountKey) + "/versions/" + version
}

func (s *Store) storageErr(accountKey, op string, err error) error {
	return &domain.StorageError{Backend: "secretmanager", AccountKey: accountKey, Op: op, Err: err}
}
