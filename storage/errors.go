package storage

import "errors"

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrInvalidDigest = errors.New("storage: invalid digest")
	ErrNilArtifact   = errors.New("storage: nil artifact")

	// ErrDigestMismatch reports stored bytes that no longer sum to the
	// digest they are keyed under.
	ErrDigestMismatch = errors.New("storage: digest mismatch")

	// ErrConsistency is the Strict-policy write failure: the two
	// replicas returned different digests for one artifact. Neither
	// write is rolled back.
	ErrConsistency = errors.New("storage: replica digests disagree")

	// ErrVerification is the PrimaryAuthoritative secondary mismatch.
	// The write still commits; the primary digest is authoritative.
	ErrVerification = errors.New("storage: secondary replica verification failed")

	// ErrMissingReplica reports a verified read where only one replica
	// holds the artifact under a policy that requires both.
	ErrMissingReplica = errors.New("storage: replica missing artifact")

	// ErrInconsistent reports a verified read where both replicas hold
	// the digest but their contents differ.
	ErrInconsistent = errors.New("storage: replica contents diverged")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
