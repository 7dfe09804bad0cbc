// Package platform hides the OS-specific mechanics of reading the
// machine's trusted root certificate store. Callers get parsed x509
// certificates and never touch CryptoAPI or keychain APIs directly.
package platform

import "errors"

var ErrNotSupported = errors.New("not supported on this platform")
