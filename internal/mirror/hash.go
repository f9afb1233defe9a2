package mirror

import (
	"encoding/hex"
	"fmt"
	"io"

	fserrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"
)

// hashChunkSize is the read size used when streaming file content into
// the digest.
const hashChunkSize = 8192

// Digest identifies a file's byte content. Two files hold the same
// content iff their digests are equal.
type Digest [blake2b.Size256]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashFile computes the BLAKE2b-256 digest of the file at path, reading
// it in fixed-size chunks so memory use does not grow with file size.
func HashFile(fsys afero.Fs, path string) (Digest, error) {
	var d Digest

	f, err := fsys.Open(path)
	if err != nil {
		return d, fmt.Errorf("opening %s: %w: %w", path, fserrors.ErrIO, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return d, err
	}

	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{f}, buf); err != nil {
		return d, fmt.Errorf("reading %s: %w: %w", path, fserrors.ErrIO, err)
	}

	copy(d[:], h.Sum(nil))

	return d, nil
}

// onlyReader hides WriterTo/ReaderFrom implementations so io.CopyBuffer
// really uses the fixed buffer.
type onlyReader struct {
	io.Reader
}
