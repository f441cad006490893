// Package systemuser mints short-lived service credentials for privileged
// cross-tenant work. Fan-out and background jobs never reuse the caller's
// token; they run under an explicit credential minted here.
package systemuser

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/config"
)

// Credential is a tenant-scoped service identity. It is passed explicitly to
// any operation acting on behalf of the system rather than a user.
type Credential struct {
	TenantID string
	Token    string
}

// Provider signs system-user tokens with the shared service key.
type Provider struct {
	username   string
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewProvider(cfg config.SystemUser) *Provider {
	return &Provider{
		username:   cfg.Username,
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   cfg.TokenTTL,
		now:        time.Now,
	}
}

// CredentialFor mints a credential scoped to tenantID.
func (p *Provider) CredentialFor(tenantID string) (Credential, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"sub":    p.username,
		"tenant": tenantID,
		"iat":    now.Unix(),
		"exp":    now.Add(p.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		return Credential{}, fmt.Errorf("sign system user token: %w", err)
	}
	return Credential{TenantID: tenantID, Token: token}, nil
}
