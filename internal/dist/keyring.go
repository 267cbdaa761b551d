package dist

import (
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// loadKeyring reads an armored or binary OpenPGP public keyring.
func loadKeyring(keyringPath string) (openpgp.EntityList, error) {
	f, err := os.Open(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring %s is empty", keyringPath)
	}
	return keyring, nil
}

// verifyDetachedSignature checks an armored or binary detached signature of
// signedPath.
func verifyDetachedSignature(keyringPath, signedPath, sigPath string) error {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return err
	}

	signed, err := os.Open(signedPath)
	if err != nil {
		return fmt.Errorf("open signed file: %w", err)
	}
	defer signed.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, signed, sig, nil)
	if err == nil {
		return nil
	}

	if _, err := signed.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind signed file: %w", err)
	}
	if _, err := sig.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind signature: %w", err)
	}
	if _, err := openpgp.CheckDetachedSignature(keyring, signed, sig, nil); err != nil {
		return fmt.Errorf("check signature: %w", err)
	}
	return nil
}
