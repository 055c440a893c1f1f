package googleauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/config"
	"google.golang.org/api/idtoken"
)

// Verifier validates Google ID tokens issued to the mobile client.
type Verifier struct {
	clientID string
	log      *logrus.Logger
}

// NewVerifier initializes a new verifier. An empty client ID disables
// Google sign-in.
func NewVerifier(cfg *config.Config, log *logrus.Logger) *Verifier {
	return &Verifier{clientID: cfg.GoogleClientID, log: log}
}

// Verify checks the token signature and audience against Google's
// public keys and returns the verified email and display name.
func (v *Verifier) Verify(ctx context.Context, token string) (string, string, error) {
	if v.clientID == "" {
		return "", "", fmt.Errorf("google sign-in is not configured")
	}

	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return "", "", fmt.Errorf("failed to validate id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "", fmt.Errorf("id token carries no email claim")
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return "", "", fmt.Errorf("email %s is not verified by google", email)
	}

	name, _ := payload.Claims["name"].(string)
	v.log.Debugf("Verified Google id token for %s", email)
	return email, name, nil
}
