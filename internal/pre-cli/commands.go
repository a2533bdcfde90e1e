package precli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/nikkolasg/hexjson"
	"github.com/urfave/cli/v2"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/common/log"
	"github.com/drand/pre/entropy"
	"github.com/drand/pre/envelope"
	"github.com/drand/pre/fs"
	"github.com/drand/pre/pre"
)

// errInvalidSignature makes verify exit with a non zero status.
var errInvalidSignature = errors.New("pre: invalid signature")

var appCommands = []*cli.Command{
	{
		Name:  "setup",
		Usage: "Derive the public parameters g and h shared by all the parties.",
		Flags: toArray(schemeFlag, gSeedFlag, hSeedFlag, fromHexFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("setupCmd")
			return setupCmd(c, l)
		},
	},
	{
		Name:  "keygen",
		Usage: "Generate a key pair, in G1 for a delegator or in G2 for a delegatee.",
		Flags: toArray(paramsFlag, familyFlag, keyOutFlag, sourceFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("keygenCmd")
			return keygenCmd(c, l)
		},
	},
	{
		Name:  "pubkey",
		Usage: "Derive the public key of a secret scalar.",
		Flags: toArray(paramsFlag, familyFlag, secretFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("pubkeyCmd")
			return pubkeyCmd(c, l)
		},
	},
	{
		Name:  "random",
		Usage: "Draw a random non-zero scalar, typically a plaintext used as a symmetric key.",
		Flags: toArray(schemeFlag, sourceFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("randomCmd")
			return randomCmd(c, l)
		},
	},
	{
		Name:  "encrypt",
		Usage: "Encrypt a plaintext scalar under a delegator public key.",
		Flags: toArray(paramsFlag, publicFlag, plaintextFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("encryptCmd")
			return encryptCmd(c, l)
		},
	},
	{
		Name:  "decrypt",
		Usage: "Decrypt a first level ciphertext with the delegator key pair.",
		Flags: toArray(paramsFlag, keyFlag, inFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("decryptCmd")
			return decryptCmd(c, l)
		},
	},
	{
		Name:  "rekey",
		Usage: "Derive the re-encryption key from the delegator key pair to a delegatee public key.",
		Flags: toArray(paramsFlag, keyFlag, publicFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("rekeyCmd")
			return rekeyCmd(c, l)
		},
	},
	{
		Name: "reencrypt",
		Usage: "Transform first level ciphertexts into ciphertexts for the delegatee. " +
			"The input holds either one ciphertext or a list of them.",
		Flags: toArray(schemeFlag, rekeyFlag, inFlag, outFlag, workersFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("reencryptCmd")
			return reencryptCmd(c, l)
		},
	},
	{
		Name:  "redecrypt",
		Usage: "Decrypt a re-encrypted ciphertext with the delegatee key pair.",
		Flags: toArray(paramsFlag, keyFlag, inFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("redecryptCmd")
			return redecryptCmd(c, l)
		},
	},
	{
		Name:  "sign",
		Usage: "Sign a message or a digest with the delegator key pair.",
		Flags: toArray(paramsFlag, keyFlag, messageFlag, digestFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("signCmd")
			return signCmd(c, l)
		},
	},
	{
		Name:  "verify",
		Usage: "Verify a signature against a delegator public key.",
		Flags: toArray(paramsFlag, publicFlag, messageFlag, digestFlag, signatureFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("verifyCmd")
			return verifyCmd(c, l)
		},
	},
	{
		Name:  "envelope",
		Usage: "Hybrid encryption of files: the AES-GCM key is protected by proxy re-encryption.",
		Subcommands: []*cli.Command{
			{
				Name:  "seal",
				Usage: "Encrypt a file for a delegator.",
				Flags: toArray(paramsFlag, publicFlag, inFlag, outFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("sealCmd")
					return sealCmd(c, l)
				},
			},
			{
				Name:  "open",
				Usage: "Decrypt an envelope with the delegator key pair.",
				Flags: toArray(paramsFlag, keyFlag, inFlag, outFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("openCmd")
					return openCmd(c, l)
				},
			},
			{
				Name:  "reencrypt",
				Usage: "Transform an envelope for the delegatee.",
				Flags: toArray(schemeFlag, rekeyFlag, inFlag, outFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("resealCmd")
					return resealCmd(c, l)
				},
			},
			{
				Name:  "redecrypt",
				Usage: "Decrypt a re-encrypted envelope with the delegatee key pair.",
				Flags: toArray(paramsFlag, keyFlag, inFlag, outFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("reopenCmd")
					return reopenCmd(c, l)
				},
			},
		},
	},
	{
		Name:  "demo",
		Usage: "Run the whole delegation flow in memory and print every step.",
		Flags: toArray(schemeFlag, gSeedFlag, hSeedFlag),
		Action: func(c *cli.Context) error {
			banner(c.App.Writer)
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("demoCmd")
			return demoCmd(c, l)
		},
	},
}

func setupCmd(c *cli.Context, l log.Logger) error {
	sch, err := getScheme(c)
	if err != nil {
		return err
	}
	hashed := !c.Bool(fromHexFlag.Name)
	params, err := pre.Setup(c.String(gSeedFlag.Name), c.String(hSeedFlag.Name), sch, hashed)
	if err != nil {
		return err
	}
	l.Infow("public parameters ready", "scheme", sch.Name, "hashed", hashed)
	return tomlOut(c, params, false)
}

func keygenCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	f, err := pre.ParseFamily(c.String(familyFlag.Name))
	if err != nil {
		return err
	}
	source, err := entropySource(c, l)
	if err != nil {
		return err
	}

	prefix := c.String(keyOutFlag.Name)
	if _, err := fs.CreateSecureFolder(filepath.Dir(prefix)); err != nil {
		return err
	}
	if ok, _ := fs.Exists(prefix + secretExtension); ok {
		return fmt.Errorf("pre: key pair already present in %s, remove it before generating a new one", prefix+secretExtension)
	}

	kp, err := pre.GenerateKeyPair(params, f, source)
	if err != nil {
		return err
	}
	secretPath, publicPath, err := saveKeyPair(prefix, kp, params.Scheme)
	if err != nil {
		return fmt.Errorf("could not save key: %w", err)
	}
	l.Infow("generated key pair", "family", f, "secret", secretPath, "public", publicPath)
	fmt.Fprintf(c.App.Writer, "Generated %s key pair at %s\n", f, secretPath)
	fmt.Fprintf(c.App.Writer, "Public key to share: %s\n", publicPath)
	return nil
}

func pubkeyCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	f, err := pre.ParseFamily(c.String(familyFlag.Name))
	if err != nil {
		return err
	}
	gen, err := params.Generator(f)
	if err != nil {
		return err
	}
	secret, err := hexArg(c, secretFlag.Name)
	if err != nil {
		return err
	}
	pub, err := pre.DerivePublicKey(pre.ScalarHex(secret), pre.PointValue(gen), f, params.Scheme)
	if err != nil {
		return err
	}
	l.Debugw("derived public key", "family", f)
	return writeOut(c, []byte(key.PointToString(pub)), false)
}

func randomCmd(c *cli.Context, l log.Logger) error {
	sch, err := getScheme(c)
	if err != nil {
		return err
	}
	source, err := entropySource(c, l)
	if err != nil {
		return err
	}
	s := pre.RandomScalar(sch, source)
	return writeOut(c, []byte(key.ScalarToString(s)), true)
}

func encryptCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	pk, err := loadPublic(c.String(publicFlag.Name), params.Scheme, pre.G1)
	if err != nil {
		return err
	}
	plain, err := hexArg(c, plaintextFlag.Name)
	if err != nil {
		return err
	}
	ct, err := pre.Encrypt(pre.ScalarHex(plain), pre.PointValue(pk), params)
	if err != nil {
		return err
	}
	enc, err := ct.Encode()
	if err != nil {
		return err
	}
	l.Debugw("encrypted plaintext", "public", c.String(publicFlag.Name))
	return jsonOut(c, enc)
}

func decryptCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G1)
	if err != nil {
		return err
	}
	enc := new(pre.EncodedCiphertext)
	if err := readJSON(c.String(inFlag.Name), enc); err != nil {
		return err
	}
	plain, err := pre.Decrypt(enc, pre.ScalarValue(kp.Secret), params)
	if err != nil {
		return err
	}
	l.Debugw("decrypted ciphertext", "in", c.String(inFlag.Name))
	return writeOut(c, []byte(key.ScalarToString(plain)), true)
}

func rekeyCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	sch := params.Scheme
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G1)
	if err != nil {
		return err
	}
	pkB, err := loadPublic(c.String(publicFlag.Name), sch, pre.G2)
	if err != nil {
		return err
	}
	rk, err := pre.ReKeyGen(pre.ScalarValue(kp.Secret), pre.PointValue(pkB), sch)
	if err != nil {
		return err
	}
	l.Infow("derived re-encryption key", "delegatee", c.String(publicFlag.Name))
	return writeOut(c, []byte(key.PointToString(rk)), false)
}

func reencryptCmd(c *cli.Context, l log.Logger) error {
	sch, err := getScheme(c)
	if err != nil {
		return err
	}
	rk, err := hexArg(c, rekeyFlag.Name)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(c.String(inFlag.Name))
	if err != nil {
		return err
	}

	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		enc := new(pre.EncodedCiphertext)
		if err := json.Unmarshal(raw, enc); err != nil {
			return fmt.Errorf("pre: decoding ciphertext: %w", err)
		}
		rct, err := pre.ReEncrypt(enc, pre.PointHex(rk), sch)
		if err != nil {
			return err
		}
		out, err := rct.Encode()
		if err != nil {
			return err
		}
		return jsonOut(c, out)
	}

	var encs []*pre.EncodedCiphertext
	if err := json.Unmarshal(raw, &encs); err != nil {
		return fmt.Errorf("pre: decoding ciphertexts: %w", err)
	}
	cts := make([]pre.CiphertextInput, len(encs))
	for i, e := range encs {
		cts[i] = e
	}
	ctx := log.ToContext(c.Context, l)
	rcts, err := pre.ReEncryptBatch(ctx, cts, pre.PointHex(rk), sch, c.Int(workersFlag.Name))
	if err != nil {
		return err
	}
	outs := make([]*pre.EncodedReEncryptedCiphertext, len(rcts))
	for i, rct := range rcts {
		if outs[i], err = rct.Encode(); err != nil {
			return err
		}
	}
	l.Infow("re-encrypted ciphertexts", "count", len(outs))
	return jsonOut(c, outs)
}

func redecryptCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	sch := params.Scheme
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G2)
	if err != nil {
		return err
	}
	enc := new(pre.EncodedReEncryptedCiphertext)
	if err := readJSON(c.String(inFlag.Name), enc); err != nil {
		return err
	}
	plain, err := pre.ReDecrypt(enc, pre.ScalarValue(kp.Secret), sch)
	if err != nil {
		return err
	}
	l.Debugw("decrypted re-encrypted ciphertext", "in", c.String(inFlag.Name))
	return writeOut(c, []byte(key.ScalarToString(plain)), true)
}

func signCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	sch := params.Scheme
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G1)
	if err != nil {
		return err
	}
	digest, err := digestArg(c, sch)
	if err != nil {
		return err
	}
	sig, err := pre.Sign(digest, pre.ScalarValue(kp.Secret), sch)
	if err != nil {
		return err
	}
	l.Debugw("signed digest", "digest", digest)
	return writeOut(c, []byte(key.PointToString(sig)), false)
}

func verifyCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	pk, err := loadPublic(c.String(publicFlag.Name), params.Scheme, pre.G1)
	if err != nil {
		return err
	}
	digest, err := digestArg(c, params.Scheme)
	if err != nil {
		return err
	}
	sig, err := hexArg(c, signatureFlag.Name)
	if err != nil {
		return err
	}
	ok, err := pre.Verify(digest, pre.PointHex(sig), pre.PointValue(pk), params)
	if err != nil {
		return err
	}
	l.Debugw("verified signature", "valid", ok)
	if !ok {
		fmt.Fprintln(c.App.Writer, "signature invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(c.App.Writer, "signature valid")
	return nil
}

func sealCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	pk, err := loadPublic(c.String(publicFlag.Name), params.Scheme, pre.G1)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(c.String(inFlag.Name))
	if err != nil {
		return err
	}
	env, err := envelope.Seal(params, pre.PointValue(pk), payload)
	if err != nil {
		return err
	}
	l.Debugw("sealed envelope", "size", len(payload))
	return jsonOut(c, env)
}

func openCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G1)
	if err != nil {
		return err
	}
	env := new(envelope.Envelope)
	if err := readJSON(c.String(inFlag.Name), env); err != nil {
		return err
	}
	payload, err := envelope.Open(params, pre.ScalarValue(kp.Secret), env)
	if err != nil {
		return err
	}
	l.Debugw("opened envelope", "size", len(payload))
	return payloadOut(c, payload)
}

func resealCmd(c *cli.Context, l log.Logger) error {
	sch, err := getScheme(c)
	if err != nil {
		return err
	}
	rk, err := hexArg(c, rekeyFlag.Name)
	if err != nil {
		return err
	}
	env := new(envelope.Envelope)
	if err := readJSON(c.String(inFlag.Name), env); err != nil {
		return err
	}
	renv, err := envelope.ReEncrypt(env, pre.PointHex(rk), sch)
	if err != nil {
		return err
	}
	l.Debugw("re-encrypted envelope", "in", c.String(inFlag.Name))
	return jsonOut(c, renv)
}

func reopenCmd(c *cli.Context, l log.Logger) error {
	params, err := loadParams(c.String(paramsFlag.Name))
	if err != nil {
		return err
	}
	sch := params.Scheme
	kp, err := loadKeyPair(c.String(keyFlag.Name), params, pre.G2)
	if err != nil {
		return err
	}
	renv := new(envelope.ReEncrypted)
	if err := readJSON(c.String(inFlag.Name), renv); err != nil {
		return err
	}
	payload, err := envelope.OpenReEncrypted(renv, pre.ScalarValue(kp.Secret), sch)
	if err != nil {
		return err
	}
	l.Debugw("opened re-encrypted envelope", "size", len(payload))
	return payloadOut(c, payload)
}

// payloadOut writes decrypted payloads as is, with tight permissions.
func payloadOut(c *cli.Context, payload []byte) error {
	if c.IsSet(outFlag.Name) {
		return writeFile(c.String(outFlag.Name), payload, true)
	}
	_, err := c.App.Writer.Write(payload)
	return err
}

func entropySource(c *cli.Context, l log.Logger) (io.Reader, error) {
	if !c.IsSet(sourceFlag.Name) {
		return nil, nil
	}
	return entropy.GetReaderFromSource(c.String(sourceFlag.Name), l)
}

// demoCmd walks through setup, key generation, encryption, delegation and
// signing with the given seeds.
func demoCmd(c *cli.Context, l log.Logger) error {
	sch, err := getScheme(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	step := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	params, err := pre.Setup(c.String(gSeedFlag.Name), c.String(hSeedFlag.Name), sch, true)
	if err != nil {
		return err
	}
	step("g = %s", key.PointToString(params.G))
	step("h = %s", key.PointToString(params.H))

	alice, err := pre.KeyGenInG1(params, nil)
	if err != nil {
		return err
	}
	bob, err := pre.KeyGenInG2(params, nil)
	if err != nil {
		return err
	}
	step("delegator public key (G1) = %s", key.PointToString(alice.Public))
	step("delegatee public key (G2) = %s", key.PointToString(bob.Public))

	plain := pre.RandomScalar(sch, nil)
	step("plaintext = %s", key.ScalarToString(plain))
	ct, err := pre.Encrypt(pre.ScalarValue(plain), pre.PointValue(alice.Public), params)
	if err != nil {
		return err
	}
	step("ciphertext = (%s, %s)", key.PointToString(ct.C1), key.ScalarToString(ct.C2))

	dec, err := pre.Decrypt(ct, pre.ScalarValue(alice.Secret), params)
	if err != nil {
		return err
	}
	step("delegator decryption matches: %t", dec.Equal(plain))

	rk, err := pre.ReKeyGen(pre.ScalarValue(alice.Secret), pre.PointValue(bob.Public), sch)
	if err != nil {
		return err
	}
	step("re-encryption key = %s", key.PointToString(rk))
	rct, err := pre.ReEncrypt(ct, pre.PointValue(rk), sch)
	if err != nil {
		return err
	}
	redec, err := pre.ReDecrypt(rct, pre.ScalarValue(bob.Secret), sch)
	if err != nil {
		return err
	}
	step("delegatee decryption matches: %t", redec.Equal(plain))

	digest := sch.Digest([]byte(key.ScalarToString(plain)))
	sig, err := pre.Sign(digest, pre.ScalarValue(alice.Secret), sch)
	if err != nil {
		return err
	}
	ok, err := pre.Verify(digest, pre.PointValue(sig), pre.PointValue(alice.Public), params)
	if err != nil {
		return err
	}
	step("signature = %s", key.PointToString(sig))
	step("signature valid: %t", ok)

	l.Infow("demo done", "scheme", sch.Name)
	if !dec.Equal(plain) || !redec.Equal(plain) || !ok {
		return errors.New("pre: demo failed")
	}
	return nil
}
