package manager

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
)

// SessionID computes the deterministic session key (spec §3 glossary:
// "<language-kind>-<32-bit-hash(project-root-absolute-path)>-default"),
// grounded on the original source's manager/client.py get_client_id (which
// combines the language kind with an xxhash32 hexdigest of the project
// path's posix form in the same "<kind>-<hash>-default" shape).
//
// No pack example imports a third-party hashing library directly (cespare/
// xxhash only appears as an indirect dependency pulled in transitively by
// other libraries, never called from application code), so this uses the
// standard library's hash/fnv — a 32-bit non-cryptographic hash serving the
// same "cheap deterministic fingerprint" role xxhash32 plays in the
// original, with the same collision-widening mitigation spec §3 requires:
// the Manager (resolveCreateSlot in manager.go) keys sessions by this hash
// AND verifies the stored ProjectRoot before reusing a slot.
func SessionID(languageKind, projectRootAbs string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(filepath.ToSlash(projectRootAbs)))
	return fmt.Sprintf("%s-%08x-default", languageKind, h.Sum32())
}

// collisionSuffix derives a disambiguator for a second session keyed under a
// 32-bit SessionID collision (spec §3: "Hash collisions on distinct roots
// MUST NOT collapse sessions... combine hash with the raw path in the key,
// or use a wider hash"). It deliberately uses the 64-bit FNV-1a hash of the
// raw path — a structurally different state size and constants from
// SessionID's 32-bit hash/fnv call above — truncated to its low 32 bits, so
// a 32-bit collision between two distinct roots does not also produce the
// same suffix: unlike calling SessionID itself again (which would recompute
// the exact same 32-bit digest of the same path bytes and thus the exact
// same suffix for both colliding roots), this independent digest collides
// again only with the odds of an unrelated 32-bit value.
func collisionSuffix(projectRootAbs string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(filepath.ToSlash(projectRootAbs)))
	return fmt.Sprintf("%08x", h.Sum64()&0xffffffff)
}
