package storage

import "io"

// ProofStore keeps receipt and proof-of-payment files. The engine stores
// only the opaque key returned by Save; everything else about the file
// lives behind this interface.
type ProofStore interface {
	// Save stores the file and returns its key. ext is the file extension
	// with or without the leading dot; empty is allowed.
	Save(proof io.Reader, ext string) (string, error)

	Exists(key string) (bool, error)
	Open(key string) (io.ReadCloser, error)

	// Delete removes the file. Deleting a missing key is not an error.
	Delete(key string) error
}
