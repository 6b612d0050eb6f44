package setup

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/n8nkit/n8nctl/pkg/envfile"
)

const mergeHeader = "Added by n8nctl setup"

// DesiredDefaults is the baseline every installation's .env must carry.
// Keys already assigned keep their values; secrets are only minted for
// installations that lack them.
func DesiredDefaults(domain, timezone, acmeEmail, botToken string) envfile.Table {
	return envfile.Table{
		{Key: "DOMAIN", Value: domain},
		{Key: "ACME_EMAIL", Value: acmeEmail},
		{Key: "GENERIC_TIMEZONE", Value: timezone},
		{Key: "TZ", Value: timezone},
		{Key: "POSTGRES_DB", Value: "n8n"},
		{Key: "POSTGRES_USER", Value: "n8n"},
		{Key: "POSTGRES_PASSWORD", Generate: secret(24)},
		{Key: "N8N_ENCRYPTION_KEY", Generate: secret(32)},
		{Key: "N8N_USER_MANAGEMENT_JWT_SECRET", Generate: secret(32)},
		{Key: "N8N_LOG_LEVEL", Value: "info"},
		{Key: "EXECUTIONS_DATA_MAX_AGE", Value: "336"},
		{Key: "TELEGRAM_BOT_TOKEN", Value: botToken},
		{Key: "TELEGRAM_CHAT_ID", Value: ""},
	}
}

func secret(bytes int) func() (string, error) {
	return func() (string, error) {
		buf := make([]byte, bytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		return hex.EncodeToString(buf), nil
	}
}
