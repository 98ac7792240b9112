package cmd

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// loadSigner reads the private key at path. An encrypted key without a
// passphrase gets an error that names the flag and variable to set.
func loadSigner(path, passphrase string) (ssh.Signer, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}
	if passphrase == "" {
		signer, err := ssh.ParsePrivateKey(pemBytes)
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("private key %s is encrypted; provide --passphrase or PIRUN_PASSPHRASE", path)
		}
		if err != nil {
			return nil, fmt.Errorf("parse key %s: %w", path, err)
		}
		return signer, nil
	}
	signer, err := ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypt key %s: %w", path, err)
	}
	return signer, nil
}
