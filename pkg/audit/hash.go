package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"
)

// ChainHash computes the tamper-evidence hash for an entry: SHA-256 over
// the previous entry's chain hash and this entry's content. The Sequence
// and ChainHash fields are excluded because they are assigned after the
// hash is computed.
//
// An empty prev marks the first entry of the record.
func ChainHash(prev string, e *Entry) string {
	h := sha256.New()

	write := func(s string) {
		io.WriteString(h, s)
		io.WriteString(h, "\n")
	}

	write(prev)
	write(e.ID)
	write(e.EvaluationID)
	write(e.OrganizationID)
	write(e.Rule)
	write(string(e.Outcome))
	write(e.Code)
	write(e.Reason)
	write(e.MaskedPhone)
	write(e.OccurredAt.UTC().Format(time.RFC3339Nano))

	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChain recomputes the hash chain over entries, which must be in
// sequence order, starting from prev (empty when the slice begins at the
// first entry of the record). It returns the final chain hash, or a
// ChainMismatchError identifying the first entry whose stored hash does
// not match its recomputed value.
func VerifyChain(prev string, entries []*Entry) (string, error) {
	for i, e := range entries {
		want := ChainHash(prev, e)
		if e.ChainHash != want {
			return "", &ChainMismatchError{
				Index:    i,
				Sequence: e.Sequence,
				Stored:   e.ChainHash,
				Computed: want,
			}
		}
		prev = want
	}
	return prev, nil
}
