package tls

import (
	stdtls "crypto/tls"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCertificates(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "cert.pem")
	key := filepath.Join(dir, "certs", "key.pem")

	if err := EnsureCertificates(cert, key); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := stdtls.LoadX509KeyPair(cert, key); err != nil {
		t.Fatalf("generated pair does not load: %v", err)
	}
	info, err := os.Stat(key)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("key permissions: %v", info.Mode().Perm())
	}

	before, _ := os.ReadFile(cert)
	if err := EnsureCertificates(cert, key); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	after, _ := os.ReadFile(cert)
	if string(before) != string(after) {
		t.Fatalf("existing certificate was replaced")
	}
}
