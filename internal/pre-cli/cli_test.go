package precli

import (
	"bytes"
	"encoding/hex"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	json "github.com/nikkolasg/hexjson"
	"github.com/stretchr/testify/require"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/crypto"
	"github.com/drand/pre/pre"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runErr(args...)
	require.NoError(t, err)
	return out
}

func runErr(args ...string) (string, error) {
	var out bytes.Buffer
	app := CLI()
	app.Writer = &out
	err := app.Run(append([]string{"pre"}, args...))
	return out.String(), err
}

type workspace struct {
	dir    string
	params string
	alice  string
	bob    string
}

func (w *workspace) file(name string) string {
	return path.Join(w.dir, name)
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	w := &workspace{dir: t.TempDir()}
	w.params = w.file("params.toml")
	w.alice = w.file("alice")
	w.bob = w.file("bob")
	run(t, "setup", "--out", w.params)
	run(t, "keygen", "--params", w.params, "--family", "G1", "--out", w.alice)
	run(t, "keygen", "--params", w.params, "--family", "g2", "--out", w.bob)
	return w
}

func TestSetup(t *testing.T) {
	out := run(t, "setup", "--g-seed", "G1-seed", "--h-seed", "G2-seed")
	ptoml := new(pre.ParamsTOML)
	_, err := toml.Decode(out, ptoml)
	require.NoError(t, err)
	require.Equal(t, crypto.DefaultSchemeID, ptoml.Scheme)

	params, err := pre.Setup("G1-seed", "G2-seed", nil, true)
	require.NoError(t, err)
	require.Equal(t, key.PointToString(params.G), ptoml.G)
	require.Equal(t, key.PointToString(params.H), ptoml.H)

	out = run(t, "setup", "--from-hex", "--g-seed", ptoml.G, "--h-seed", ptoml.H)
	require.Contains(t, out, ptoml.G)

	_, err = runErr("setup", "--from-hex")
	require.Error(t, err)
	_, err = runErr("setup", "--scheme", "bn254")
	require.Error(t, err)
}

func TestKeygen(t *testing.T) {
	w := newWorkspace(t)

	info, err := os.Stat(w.alice + secretExtension)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	_, err = os.Stat(w.bob + publicExtension)
	require.NoError(t, err)

	// no overwrite of an existing key pair
	_, err = runErr("keygen", "--params", w.params, "--family", "G1", "--out", w.alice)
	require.Error(t, err)
	_, err = runErr("keygen", "--params", w.params, "--family", "GT", "--out", w.file("carol"))
	require.Error(t, err)
	_, err = runErr("keygen", "--params", w.file("nope.toml"), "--out", w.file("carol"))
	require.Error(t, err)

	params, err := loadParams(w.params)
	require.NoError(t, err)
	alice, err := loadKeyPair(w.alice+secretExtension, params, pre.G1)
	require.NoError(t, err)
	require.NoError(t, alice.Validate(params))
	_, err = loadKeyPair(w.bob+secretExtension, params, pre.G1)
	require.Error(t, err)

	out := run(t, "pubkey", "--params", w.params, "--family", "G1", "--secret", key.ScalarToString(alice.Secret))
	require.Equal(t, key.PointToString(alice.Public), strings.TrimSpace(out))

	// a key file whose public half was swapped does not load
	edited := w.file("edited" + secretExtension)
	require.NoError(t, key.Save(edited, &keyPairFile{
		KeyPair: &pre.KeyPair{Family: pre.G1, Secret: alice.Secret, Public: params.G},
		sch:     params.Scheme,
	}, true))
	_, err = loadKeyPair(edited, params, pre.G1)
	require.ErrorIs(t, err, pre.ErrInvalidKeyPair)
	_, err = runErr("sign", "--params", w.params, "--key", edited, "--message", "1111")
	require.ErrorIs(t, err, pre.ErrInvalidKeyPair)

	// the public key file matches the library encoding
	ptoml := new(pre.PublicTOML)
	_, err = toml.DecodeFile(w.alice+publicExtension, ptoml)
	require.NoError(t, err)
	require.Equal(t, alice.PublicTOML(), ptoml)
}

func TestEncryptDecryptDelegate(t *testing.T) {
	w := newWorkspace(t)
	plain := strings.TrimSpace(run(t, "random"))
	require.Len(t, plain, 64)

	ct := w.file("ct.json")
	run(t, "encrypt", "--params", w.params, "--public", w.alice+publicExtension, "--plaintext", plain, "--out", ct)
	out := run(t, "decrypt", "--params", w.params, "--key", w.alice+secretExtension, "--in", ct)
	require.Equal(t, plain, strings.TrimSpace(out))

	rk := w.file("rk.txt")
	run(t, "rekey", "--params", w.params, "--key", w.alice+secretExtension, "--public", w.bob+publicExtension, "--out", rk)
	rct := w.file("rct.json")
	run(t, "reencrypt", "--rekey", rk, "--in", ct, "--out", rct)
	out = run(t, "redecrypt", "--params", w.params, "--key", w.bob+secretExtension, "--in", rct)
	require.Equal(t, plain, strings.TrimSpace(out))

	// the delegatee key can't open first level ciphertexts
	_, err := runErr("decrypt", "--params", w.params, "--key", w.bob+secretExtension, "--in", ct)
	require.Error(t, err)
	// keys are checked against their role
	_, err = runErr("rekey", "--params", w.params, "--key", w.bob+secretExtension, "--public", w.alice+publicExtension)
	require.Error(t, err)
	_, err = runErr("encrypt", "--params", w.params, "--public", w.bob+publicExtension, "--plaintext", plain)
	require.Error(t, err)
	_, err = runErr("encrypt", "--params", w.params, "--public", w.alice+publicExtension, "--plaintext", "zz")
	require.Error(t, err)
}

func TestReEncryptList(t *testing.T) {
	w := newWorkspace(t)
	plains := []string{
		strings.TrimSpace(run(t, "random")),
		strings.TrimSpace(run(t, "random")),
		strings.TrimSpace(run(t, "random")),
	}
	cts := make([]string, len(plains))
	for i, p := range plains {
		cts[i] = run(t, "encrypt", "--params", w.params, "--public", w.alice+publicExtension, "--plaintext", p)
	}
	list := w.file("cts.json")
	require.NoError(t, os.WriteFile(list, []byte("["+strings.Join(cts, ",")+"]"), 0600))

	rk := strings.TrimSpace(run(t, "rekey", "--params", w.params, "--key", w.alice+secretExtension, "--public", w.bob+publicExtension))
	out := run(t, "--verbose", "reencrypt", "--rekey", rk, "--in", list, "--workers", "2")

	var rcts []*pre.EncodedReEncryptedCiphertext
	require.NoError(t, json.Unmarshal([]byte(out), &rcts))
	require.Len(t, rcts, len(plains))

	params, err := loadParams(w.params)
	require.NoError(t, err)
	sch := params.Scheme
	bob, err := loadKeyPair(w.bob+secretExtension, params, pre.G2)
	require.NoError(t, err)
	for i, rct := range rcts {
		got, err := pre.ReDecrypt(rct, pre.ScalarValue(bob.Secret), sch)
		require.NoError(t, err)
		require.Equal(t, plains[i], key.ScalarToString(got))
	}

	require.NoError(t, os.WriteFile(list, []byte("["+cts[0]+", null]"), 0600))
	_, err = runErr("reencrypt", "--rekey", rk, "--in", list)
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	w := newWorkspace(t)
	sig := strings.TrimSpace(run(t, "sign", "--params", w.params, "--key", w.alice+secretExtension, "--message", "1111"))

	out := run(t, "verify", "--params", w.params, "--public", w.alice+publicExtension,
		"--message", "1111", "--signature", sig)
	require.Contains(t, out, "signature valid")

	digest := hex.EncodeToString(crypto.NewBLS12381Scheme().Digest([]byte("1111")))
	sigFile := w.file("sig.txt")
	run(t, "sign", "--params", w.params, "--key", w.alice+secretExtension, "--digest", digest, "--out", sigFile)
	out = run(t, "verify", "--params", w.params, "--public", w.alice+publicExtension,
		"--digest", digest, "--signature", sigFile)
	require.Contains(t, out, "signature valid")

	_, err := runErr("verify", "--params", w.params, "--public", w.alice+publicExtension,
		"--message", "2222", "--signature", sig)
	require.ErrorIs(t, err, errInvalidSignature)

	_, err = runErr("verify", "--params", w.params, "--public", w.alice+publicExtension,
		"--message", "1111", "--signature", "deadbeef")
	require.Error(t, err)
	require.NotErrorIs(t, err, errInvalidSignature)

	_, err = runErr("sign", "--params", w.params, "--key", w.alice+secretExtension)
	require.Error(t, err)
}

func TestEnvelopeCommands(t *testing.T) {
	w := newWorkspace(t)
	payload := []byte("a file the delegatee should be able to read")
	in := w.file("payload.txt")
	require.NoError(t, os.WriteFile(in, payload, 0600))

	env := w.file("env.json")
	run(t, "envelope", "seal", "--params", w.params, "--public", w.alice+publicExtension, "--in", in, "--out", env)
	out := run(t, "envelope", "open", "--params", w.params, "--key", w.alice+secretExtension, "--in", env)
	require.Equal(t, string(payload), out)

	rk := w.file("rk.txt")
	run(t, "rekey", "--params", w.params, "--key", w.alice+secretExtension, "--public", w.bob+publicExtension, "--out", rk)
	renv := w.file("renv.json")
	run(t, "envelope", "reencrypt", "--rekey", rk, "--in", env, "--out", renv)

	plain := w.file("plain.txt")
	run(t, "envelope", "redecrypt", "--params", w.params, "--key", w.bob+secretExtension, "--in", renv, "--out", plain)
	got, err := os.ReadFile(plain)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	info, err := os.Stat(plain)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = runErr("envelope", "redecrypt", "--params", w.params, "--key", w.bob+secretExtension, "--in", env)
	require.Error(t, err)
}

func TestDemo(t *testing.T) {
	out := run(t, "demo")
	require.Contains(t, out, "delegator decryption matches: true")
	require.Contains(t, out, "delegatee decryption matches: true")
	require.Contains(t, out, "signature valid: true")
}
