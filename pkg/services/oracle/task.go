package oracle

import (
	"sort"
	"time"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/io"
	"github.com/oraclegrid/node/pkg/smartcontract"
)

// oracleSignature is one peer's partial signature over either the
// primary or the backup response transaction. verified is cached so
// re-checking after installing a new tx only needs to touch signatures
// that have not already proven correct against the current hash.
type oracleSignature struct {
	pub      *keys.PublicKey
	sig      []byte
	verified bool
}

// OracleTask is the in-memory record for one pending request: its
// primary and backup response transactions (nil until the builder has
// run) and the signatures collected for each, keyed by the signer's
// compressed public key. Every field is mutated only while the owning
// Service's single mutex is held.
type OracleTask struct {
	Request     *chain.Request
	Tx          *chain.Transaction
	BackupTx    *chain.Transaction
	Signs       map[string]*oracleSignature
	BackupSigns map[string]*oracleSignature
	CreatedAt   time.Time
}

func newOracleTask(req *chain.Request, now time.Time) *OracleTask {
	return &OracleTask{
		Request:     req,
		Signs:       make(map[string]*oracleSignature),
		BackupSigns: make(map[string]*oracleSignature),
		CreatedAt:   now,
	}
}

// installTx installs tx as the task's primary response transaction and
// drops every previously recorded signature that no longer verifies
// against its signing hash.
func (t *OracleTask) installTx(tx *chain.Transaction) {
	replaced := t.Tx != nil && t.Tx.SigningHash() != tx.SigningHash()
	t.Tx = tx
	t.pruneAgainst(t.Signs, tx.SigningHash(), replaced)
}

// installBackupTx is installTx's counterpart for the backup transaction.
func (t *OracleTask) installBackupTx(tx *chain.Transaction) {
	replaced := t.BackupTx != nil && t.BackupTx.SigningHash() != tx.SigningHash()
	t.BackupTx = tx
	t.pruneAgainst(t.BackupSigns, tx.SigningHash(), replaced)
}

func (t *OracleTask) pruneAgainst(sigs map[string]*oracleSignature, digest [32]byte, replaced bool) {
	for k, s := range sigs {
		if s.verified && !replaced {
			continue
		}
		if s.pub.Verify(s.sig, digest[:]) {
			s.verified = true
		} else {
			delete(sigs, k)
		}
	}
}

// addSpeculative records sig under pub in both maps unverified, used
// when neither transaction has been built locally yet.
func (t *OracleTask) addSpeculative(pub *keys.PublicKey, sig []byte) {
	key := pub.String()
	t.Signs[key] = &oracleSignature{pub: pub, sig: sig}
	t.BackupSigns[key] = &oracleSignature{pub: pub, sig: sig}
}

// addVerified verifies sig against the primary transaction's signing
// hash, falling back to the backup transaction; it records the
// signature under whichever map it matched and reports which one, or
// an error if it matched neither.
func (t *OracleTask) addVerified(pub *keys.PublicKey, sig []byte) (backup bool, err error) {
	key := pub.String()
	if t.Tx != nil {
		h := t.Tx.SigningHash()
		if pub.Verify(sig, h[:]) {
			t.Signs[key] = &oracleSignature{pub: pub, sig: sig, verified: true}
			return false, nil
		}
	}
	if t.BackupTx != nil {
		h := t.BackupTx.SigningHash()
		if pub.Verify(sig, h[:]) {
			t.BackupSigns[key] = &oracleSignature{pub: pub, sig: sig, verified: true}
			return true, nil
		}
	}
	return false, errInvalidResponseSig
}

// finalize checks whether either the primary or backup transaction now
// carries at least M verified signatures out of oracleNodes, and if so
// completes its multisig witness. It returns the finalized transaction
// and true, preferring the primary transaction when both qualify.
func (t *OracleTask) finalize(oracleNodes keys.PublicKeys) (*chain.Transaction, bool) {
	if t.Tx != nil && finalizeWitness(t.Tx, oracleNodes, t.Signs) {
		return t.Tx, true
	}
	if t.BackupTx != nil && finalizeWitness(t.BackupTx, oracleNodes, t.BackupSigns) {
		return t.BackupTx, true
	}
	return nil, false
}

// finalizeWitness assembles the multisig invocation script from up to M
// verified signatures, taken in ascending order of signer public key,
// and writes it into tx's multisig witness slot. It returns false
// without mutating tx if fewer than M verified signatures are present.
func finalizeWitness(tx *chain.Transaction, oracleNodes keys.PublicKeys, sigs map[string]*oracleSignature) bool {
	m := smartcontract.Threshold(len(oracleNodes))
	ordered := append(keys.PublicKeys{}, oracleNodes...)
	sort.Sort(ordered)
	collected := make([][]byte, 0, m)
	for _, pub := range ordered {
		s, ok := sigs[pub.String()]
		if !ok || !s.verified {
			continue
		}
		collected = append(collected, s.sig)
		if len(collected) == m {
			break
		}
	}
	if len(collected) < m {
		return false
	}

	w := io.NewBufBinWriter()
	for _, sig := range collected {
		w.WriteB(0x0c) // PUSHDATA1-style length-prefixed push, same convention as VerificationScript
		w.WriteB(byte(len(sig)))
		w.WriteBytes(sig)
	}

	multisigIndex := multisigWitnessIndex(tx)
	if multisigIndex < 0 {
		return false
	}
	tx.Scripts[multisigIndex].InvocationScript = w.Bytes()
	return true
}

// multisigWitnessIndex returns the position of the witness whose signer
// carries a non-nil AllowedContracts scope: by construction that is
// always the multisig account, never the native Oracle contract's own
// witness.
func multisigWitnessIndex(tx *chain.Transaction) int {
	for i, s := range tx.Signers {
		if s.AllowedContracts != nil {
			return i
		}
	}
	return -1
}
