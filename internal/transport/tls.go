package transport

import (
	"crypto/x509"
	"fmt"
	"os"
)

// CABundleFromEnv returns the custom CA bundle path from AWS_CA_BUNDLE,
// falling back to SSL_CERT_FILE.
func CABundleFromEnv() string {
	if path := os.Getenv("AWS_CA_BUNDLE"); path != "" {
		return path
	}
	return os.Getenv("SSL_CERT_FILE")
}

// loadCertPool returns the system roots plus every certificate in the PEM
// file at path.
func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle %s: %w", path, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("CA bundle %s contains no PEM certificates", path)
	}
	return pool, nil
}
