package oauth

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	oauthclient "github.com/PabloAlaniz/google-suite/internal/adapters/driven/oauth"
	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// Ensure ConsentSource implements the source interface.
var _ driven.CredentialSource = (*ConsentSource)(nil)

// defaultConsentTimeout bounds how long we wait for the user to finish the
// browser flow.
const defaultConsentTimeout = 5 * time.Minute

// ConsentSource obtains credentials by walking the user through the OAuth
// consent flow: it opens the browser at Google's authorization endpoint and
// collects the code on a loopback callback server, protected by PKCE and a
// random state parameter.
type ConsentSource struct {
	oauthCfg   *oauth2.Config
	exchange   *oauthclient.Client
	accountKey string
	port       int
	timeout    time.Duration

	// openBrowser and out are swappable for tests.
	openBrowser func(string) error
	out         io.Writer
}

// ConsentOption customises a ConsentSource.
type ConsentOption func(*ConsentSource)

// WithPort fixes the loopback callback port. 0 picks a free port.
func WithPort(port int) ConsentOption {
	return func(s *ConsentSource) { s.port = port }
}

// WithTimeout bounds the wait for the user to complete consent.
func WithTimeout(d time.Duration) ConsentOption {
	return func(s *ConsentSource) { s.timeout = d }
}

// WithBrowser overrides how the authorization URL is opened.
func WithBrowser(open func(string) error) ConsentOption {
	return func(s *ConsentSource) { s.openBrowser = open }
}

// WithOutput overrides where user instructions are printed.
func WithOutput(w io.Writer) ConsentOption {
	return func(s *ConsentSource) { s.out = w }
}

// NewConsentSource loads the OAuth client configuration from a Google
// "installed app" credentials JSON file. accountKey identifies the stored
// record, normally the user's email address.
func NewConsentSource(credentialsFile, accountKey string, opts ...ConsentOption) (*ConsentSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.CredentialsNotFoundError{Path: credentialsFile, Err: err}
		}
		return nil, fmt.Errorf("read oauth client credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data)
	if err != nil {
		return nil, &domain.CredentialsNotFoundError{Path: credentialsFile, Err: err}
	}

	s := &ConsentSource{
		oauthCfg:    cfg,
		accountKey:  accountKey,
		timeout:     defaultConsentTimeout,
		openBrowser: OpenBrowser,
		out:         os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.exchange = oauthclient.NewClient(cfg.ClientID, cfg.ClientSecret,
		oauthclient.WithTokenURL(cfg.Endpoint.TokenURL))

	return s, nil
}

// NewConsentSourceFromClient builds a consent source from an inline OAuth
// client ID and secret against Google's standard endpoints, for setups that
// do not keep a credentials JSON on disk.
func NewConsentSourceFromClient(clientID, clientSecret, accountKey string, opts ...ConsentOption) *ConsentSource {
	s := &ConsentSource{
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
		accountKey:  accountKey,
		timeout:     defaultConsentTimeout,
		openBrowser: OpenBrowser,
		out:         os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.exchange = oauthclient.NewClient(clientID, clientSecret,
		oauthclient.WithTokenURL(google.Endpoint.TokenURL))

	return s
}

// Obtain runs the consent flow and returns the granted credential.
func (s *ConsentSource) Obtain(ctx context.Context, scopes []string) (*domain.Credential, error) {
	state := uuid.NewString()
	verifier := GenerateCodeVerifier()

	srv := NewCallbackServer(s.port, state)
	if err := srv.Start(); err != nil {
		return nil, s.authErr("start callback server", err)
	}
	defer srv.Stop()

	cfg := *s.oauthCfg
	cfg.RedirectURL = srv.RedirectURI()
	cfg.Scopes = scopes

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("code_challenge", GenerateCodeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	fmt.Fprintf(s.out, "Opening browser for Google consent. If it does not open, visit:\n%s\n", authURL)
	if err := s.openBrowser(authURL); err != nil {
		logger.Warn("could not open browser: %v", err)
	}

	code, err := srv.WaitForCode(s.timeout)
	if err != nil {
		return nil, s.authErr("wait for authorization", err)
	}

	cred, err := s.exchange.ExchangeCode(ctx, code, srv.RedirectURI(), verifier)
	if err != nil {
		return nil, s.authErr("exchange authorization code", err)
	}

	cred.AccountKey = s.accountKey
	if len(cred.Scopes) == 0 {
		cred.Scopes = append([]string(nil), scopes...)
	}

	logger.Info("consent granted for %s", s.accountKey)
	return cred, nil
}

// AccountKey returns the account this source authenticates.
func (s *ConsentSource) AccountKey() string {
	return s.accountKey
}

// Interactive reports true: consent always needs a browser.
func (s *ConsentSource) Interactive() bool {
	return true
}

func (s *ConsentSource) authErr(reason string, err error) error {
	return &domain.AuthenticationError{AccountKey: s.accountKey, Reason: reason, Err: err}
}
