// Package pre implements a unidirectional, single-hop proxy re-encryption
// scheme over a bilinear pairing e: G1 x G2 -> GT, together with a BLS style
// signature reusing the same setup.
//
// A delegator holding (a, g^a) encrypts an element m of Fr:
//
//	C1 = g^(a*k)
//	C2 = m + H(e(g,h)^k)
//
// and opens it with e(C1, h)^(1/a) = e(g,h)^k. To delegate, it hands the
// re-encryption key rk = (h^b)^(1/a) to a proxy, which computes
// e(C1, rk) = e(g,h)^(b*k) without learning anything about m. The delegatee
// removes b and recovers the same mask.
//
// Ciphertexts carry no integrity protection: opening with the wrong key, the
// wrong re-encryption key or a modified ciphertext returns an unrelated
// plaintext and no error. Callers needing authenticity must add a MAC or use
// the Sign and Verify functions, or use the envelope package for payloads.
//
// Only elements of Fr are encrypted. Arbitrary payloads are encrypted under a
// random Fr element used as a symmetric key, see RandomScalar and the
// envelope package.
//
// All functions are pure and safe for concurrent use. Inputs can be given
// either as native kyber values or in their canonical serialized form through
// the ScalarInput, PointInput, CiphertextInput and ReEncryptedInput types.
package pre
