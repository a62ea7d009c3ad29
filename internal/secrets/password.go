package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobfeed"

// SMTPPassword resolves the notification transport password: OS keychain
// first, JOBFEED_SMTP_PASS env as fallback for headless deployments.
func SMTPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := strings.TrimSpace(os.Getenv("JOBFEED_SMTP_PASS")); pw != "" {
		return pw, nil
	}
	return "", errors.New("SMTP password not found (set it in keychain or JOBFEED_SMTP_PASS)")
}

// IMAPPassword resolves the alert-inbox password the same way.
func IMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := strings.TrimSpace(os.Getenv("JOBFEED_IMAP_PASS")); pw != "" {
		return pw, nil
	}
	return "", errors.New("IMAP password not found (set it in keychain or JOBFEED_IMAP_PASS)")
}

func SetPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeletePassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// SMTPAccount names the keychain entry for a mail identity.
func SMTPAccount(username, host string) string {
	return fmt.Sprintf("jobfeed:smtp:%s@%s", username, host)
}

// IMAPAccount names the keychain entry for an alert inbox.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("jobfeed:imap:%s@%s", username, host)
}
