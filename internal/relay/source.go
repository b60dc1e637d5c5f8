package relay

import (
	"fmt"
	"strings"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/pkg/errors"
)

// Supported webhook URL sources.
const (
	SourceEnv = "env"
	SourceSSM = "ssm"
)

// SecretGetter fetches a secret by key, such as an SSM parameter.
type SecretGetter interface {
	GetSecret(key string, encrypted bool) (*string, error)
}

// ResolveWebhookURL resolves the target URL once at start-up. With SourceEnv, value is the URL itself.
// With SourceSSM, value names the parameter read through secrets.
// An empty value yields an empty URL, leaving the relay unconfigured rather than failing start-up.
func ResolveWebhookURL(source, value string, secrets SecretGetter) (string, error) {
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(strings.ToLower(source)) {
	case "", SourceEnv:
		return value, nil
	case SourceSSM:
		if value == "" {
			return "", nil
		}
		if secrets == nil {
			return "", errors.New("no secret store available for ssm webhook URL source")
		}
		secret, err := secrets.GetSecret(value, true)
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve webhook URL")
		}
		return strings.TrimSpace(helpers.String(secret)), nil
	default:
		return "", fmt.Errorf("unsupported webhook URL source: %s", source)
	}
}
