// Package precli is the command line driver of the proxy re-encryption
// library. Public parameters and keys are kept in TOML files, ciphertexts and
// envelopes in JSON files.
package precli

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	json "github.com/nikkolasg/hexjson"
	"github.com/urfave/cli/v2"

	"github.com/drand/pre/common"
	"github.com/drand/pre/common/key"
	"github.com/drand/pre/common/log"
	"github.com/drand/pre/crypto"
	"github.com/drand/pre/fs"
)

var SetVersionPrinter sync.Once

func banner(w io.Writer) {
	version := common.GetAppVersion()
	_, _ = fmt.Fprintf(w, "pre %s (date %v, commit %v)\n", version.String(), common.BUILDDATE, common.COMMIT)
}

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Usage:   "If set, verbosity is at the debug level",
	EnvVars: []string{"PRE_VERBOSE"},
}

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Usage:   "Set the logging output to JSON",
	EnvVars: []string{"PRE_LOG_JSON"},
}

var schemeFlag = &cli.StringFlag{
	Name:    "scheme",
	Usage:   "Indicates the pairing setting to use. Available: " + strings.Join(crypto.ListSchemes(), ", "),
	Value:   crypto.DefaultSchemeID,
	EnvVars: []string{crypto.SchemeEnvVar},
}

var paramsFlag = &cli.StringFlag{
	Name:    "params",
	Usage:   "Path to the TOML file holding the public parameters, as created by the setup command.",
	Value:   "params.toml",
	EnvVars: []string{"PRE_PARAMS"},
}

var gSeedFlag = &cli.StringFlag{
	Name:  "g-seed",
	Usage: "Seed hashed onto G1 to obtain the generator g.",
	Value: "G1-seed",
}

var hSeedFlag = &cli.StringFlag{
	Name:  "h-seed",
	Usage: "Seed hashed onto G2 to obtain the generator h.",
	Value: "G2-seed",
}

var fromHexFlag = &cli.BoolFlag{
	Name:  "from-hex",
	Usage: "Interpret --g-seed and --h-seed as hex encoded generators instead of hashing them.",
}

var familyFlag = &cli.StringFlag{
	Name:  "family",
	Usage: "G1 for a delegator key, G2 for a delegatee key.",
	Value: "G1",
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Save the result into this file instead of printing it on stdout.",
}

var keyOutFlag = &cli.StringFlag{
	Name: "out",
	Usage: "Path prefix of the generated key files: <out>.secret.toml holds the key pair, " +
		"<out>.public.toml the public key to hand to the other parties.",
	Required: true,
}

var sourceFlag = &cli.StringFlag{
	Name:  "source",
	Usage: "File to read additional entropy from, e.g. a hardware RNG. It is mixed with crypto/rand.",
}

var keyFlag = &cli.StringFlag{
	Name:     "key",
	Usage:    "Path to a key pair file, as created by keygen.",
	Required: true,
}

var publicFlag = &cli.StringFlag{
	Name:     "public",
	Usage:    "Path to a public key file, as created by keygen.",
	Required: true,
}

var secretFlag = &cli.StringFlag{
	Name:     "secret",
	Usage:    "Hex encoded secret scalar.",
	Required: true,
}

var plaintextFlag = &cli.StringFlag{
	Name:     "plaintext",
	Usage:    "Hex encoded plaintext scalar, see the random command.",
	Required: true,
}

var inFlag = &cli.StringFlag{
	Name:     "in",
	Usage:    "Path to the input file.",
	Required: true,
}

var rekeyFlag = &cli.StringFlag{
	Name:     "rekey",
	Usage:    "Hex encoded re-encryption key, or the path of a file holding it.",
	Required: true,
}

var workersFlag = &cli.IntFlag{
	Name:  "workers",
	Usage: "Number of goroutines re-encrypting a list of ciphertexts. 0 uses one per CPU.",
}

var messageFlag = &cli.StringFlag{
	Name:  "message",
	Usage: "Message whose digest is signed or verified.",
}

var digestFlag = &cli.StringFlag{
	Name:  "digest",
	Usage: "Hex encoded digest, signed or verified as is. Takes precedence over --message.",
}

var signatureFlag = &cli.StringFlag{
	Name:     "signature",
	Usage:    "Hex encoded signature, or the path of a file holding it.",
	Required: true,
}

// CLI runs the pre app
func CLI() *cli.App {
	version := common.GetAppVersion()

	app := cli.NewApp()
	app.Name = "pre"

	SetVersionPrinter.Do(func() {
		cli.VersionPrinter = func(c *cli.Context) {
			fmt.Fprintf(c.App.Writer, "pre %s (date %v, commit %v)\n", version, common.BUILDDATE, common.COMMIT)
		}
	})

	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent default behavior of calling OS.exit(1),
		// when tests expect to be able to run multiple commands.
	}
	app.Version = version.String()
	app.Usage = "pairing based proxy re-encryption"
	// we need to copy the underlying commands to avoid races, cli sadly doesn't support concurrent executions well
	appComm := make([]*cli.Command, len(appCommands))
	for i, p := range appCommands {
		v := *p
		appComm[i] = &v
	}
	app.Commands = appComm
	verbFlag := *verboseFlag
	jFlag := *jsonFlag
	app.Flags = toArray(&verbFlag, &jFlag)
	return app
}

func isVerbose(c *cli.Context) bool {
	return c.IsSet(verboseFlag.Name)
}

func logLevel(c *cli.Context) int {
	if isVerbose(c) {
		return log.DebugLevel
	}

	return log.ErrorLevel
}

func logJSON(c *cli.Context) bool {
	return c.Bool(jsonFlag.Name)
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

func getScheme(c *cli.Context) (*crypto.Scheme, error) {
	return crypto.GetSchemeByIDWithDefault(c.String(schemeFlag.Name))
}

// hexArg returns the hex value of a flag, read from a file when the flag
// names an existing file.
func hexArg(c *cli.Context, name string) (string, error) {
	v := strings.TrimSpace(c.String(name))
	if v == "" {
		return "", fmt.Errorf("pre: empty --%s", name)
	}
	if ok, err := fs.Exists(v); err != nil || !ok {
		return v, nil
	}
	buff, err := os.ReadFile(v)
	if err != nil {
		return "", fmt.Errorf("pre: reading --%s: %w", name, err)
	}
	return strings.TrimSpace(string(buff)), nil
}

func digestArg(c *cli.Context, sch *crypto.Scheme) ([]byte, error) {
	switch {
	case c.IsSet(digestFlag.Name):
		d, err := hex.DecodeString(c.String(digestFlag.Name))
		if err != nil {
			return nil, fmt.Errorf("pre: invalid digest: %w", err)
		}
		return d, nil
	case c.IsSet(messageFlag.Name):
		return sch.Digest([]byte(c.String(messageFlag.Name))), nil
	default:
		return nil, errors.New("pre: one of --message or --digest is required")
	}
}

func readJSON(path string, v interface{}) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()
	if err := json.NewDecoder(fd).Decode(v); err != nil {
		return fmt.Errorf("pre: decoding %s: %w", path, err)
	}
	return nil
}

// writeOut saves buff in the --out file if set, prints it otherwise.
func writeOut(c *cli.Context, buff []byte, secure bool) error {
	if !c.IsSet(outFlag.Name) {
		_, err := fmt.Fprintln(c.App.Writer, strings.TrimRight(string(buff), "\n"))
		return err
	}
	return writeFile(c.String(outFlag.Name), buff, secure)
}

func writeFile(path string, buff []byte, secure bool) error {
	if !secure {
		return os.WriteFile(path, buff, 0644)
	}
	fd, err := fs.CreateSecureFile(path)
	if err != nil {
		return err
	}
	defer fd.Close()
	_, err = fd.Write(buff)
	return err
}

func jsonOut(c *cli.Context, v interface{}) error {
	buff, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOut(c, buff, false)
}

func tomlOut(c *cli.Context, t key.Tomler, secure bool) error {
	if c.IsSet(outFlag.Name) {
		return key.Save(c.String(outFlag.Name), t, secure)
	}
	var buff bytes.Buffer
	if err := toml.NewEncoder(&buff).Encode(t.TOML()); err != nil {
		return fmt.Errorf("pre: can't encode to TOML: %w", err)
	}
	return writeOut(c, buff.Bytes(), secure)
}
