package domain

import "time"

// SignedSession is an issued credential. It is immutable once minted and
// stays valid until its expiry passes or its issuance id is removed from
// the allow-list.
type SignedSession struct {
	Token      string
	SubjectID  int64
	IssuanceID string
	ExpiresAt  time.Time
}

// AllowListEntry is the persisted revocation handle for one issued session.
// An issuance id is never reused across subjects or across time.
type AllowListEntry struct {
	IssuanceID string
	SubjectID  int64
	ExpiresAt  time.Time
}
