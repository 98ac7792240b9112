package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// rsaKeyPEM returns a fresh RSA key, PEM encoded and optionally encrypted.
func rsaKeyPEM(t *testing.T, passphrase string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	der := x509.MarshalPKCS1PrivateKey(key)
	if passphrase == "" {
		return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}))
	}
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", der, []byte(passphrase), x509.PEMCipherAES256)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(block))
}

func TestLoadSigner_FileNotFound_Dedicated(t *testing.T) {
	_, err := loadSigner(filepath.Join(t.TempDir(), "missing_key"), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "read key")
}

func TestLoadSigner_RSAKey_Success_Dedicated(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_rsa", rsaKeyPEM(t, ""))
	s, err := loadSigner(p, "")
	require.NoError(t, err)
	require.NotNil(t, s.PublicKey())
}

func TestLoadSigner_UnencryptedKey_WithPassphrase_Fails(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_rsa", rsaKeyPEM(t, ""))
	_, err := loadSigner(p, "pass")
	require.Error(t, err)
}

func TestLoadSigner_EncryptedKey_MissingPassphrase_Error(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_rsa_enc", rsaKeyPEM(t, "pp"))
	_, err := loadSigner(p, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "is encrypted")
	require.Contains(t, err.Error(), "PIRUN_PASSPHRASE")
}

func TestLoadSigner_EncryptedKey_WithPassphrase_Success(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_rsa_enc", rsaKeyPEM(t, "pp"))
	s, err := loadSigner(p, "pp")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestLoadSigner_Garbage(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_bad", "not a key")
	_, err := loadSigner(p, "")
	require.Error(t, err)
}
