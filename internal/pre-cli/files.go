package precli

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/crypto"
	"github.com/drand/pre/pre"
)

const (
	secretExtension = ".secret.toml"
	publicExtension = ".public.toml"
)

var _ key.Tomler = (*keyPairFile)(nil)
var _ key.Tomler = (*publicFile)(nil)

// keyPairFile binds a key pair to the scheme its TOML form decodes in.
type keyPairFile struct {
	*pre.KeyPair
	sch *crypto.Scheme
}

func (k *keyPairFile) FromTOML(i interface{}) error {
	return k.KeyPair.FromTOML(k.sch, i)
}

// publicFile is the public half of a key pair.
type publicFile struct {
	sch    *crypto.Scheme
	Family pre.Family
	Key    kyber.Point
}

func (p *publicFile) TOML() interface{} {
	return (&pre.KeyPair{Family: p.Family, Public: p.Key}).PublicTOML()
}

func (p *publicFile) TOMLValue() interface{} {
	return &pre.PublicTOML{}
}

func (p *publicFile) FromTOML(i interface{}) error {
	ptoml, ok := i.(*pre.PublicTOML)
	if !ok {
		return errors.New("public key can't decode toml from non PublicTOML struct")
	}
	f, pub, err := pre.PublicFromTOML(p.sch, ptoml)
	if err != nil {
		return err
	}
	p.Family = f
	p.Key = pub
	return nil
}

func loadParams(path string) (*pre.Params, error) {
	params := new(pre.Params)
	if err := key.Load(path, params); err != nil {
		return nil, fmt.Errorf("pre: can't load params from %s: %w", path, err)
	}
	return params, nil
}

// loadKeyPair reads a key pair and checks it belongs to the expected family
// and that its public key matches the secret under params.
func loadKeyPair(path string, params *pre.Params, f pre.Family) (*pre.KeyPair, error) {
	kf := &keyPairFile{KeyPair: new(pre.KeyPair), sch: params.Scheme}
	if err := key.Load(path, kf); err != nil {
		return nil, fmt.Errorf("pre: can't load key pair from %s: %w", path, err)
	}
	if kf.Family != f {
		return nil, fmt.Errorf("pre: %s holds a %s key, expected %s", path, kf.Family, f)
	}
	if err := kf.Validate(params); err != nil {
		return nil, fmt.Errorf("pre: %s: %w", path, err)
	}
	return kf.KeyPair, nil
}

func loadPublic(path string, sch *crypto.Scheme, f pre.Family) (kyber.Point, error) {
	pf := &publicFile{sch: sch}
	if err := key.Load(path, pf); err != nil {
		return nil, fmt.Errorf("pre: can't load public key from %s: %w", path, err)
	}
	if pf.Family != f {
		return nil, fmt.Errorf("pre: %s holds a %s key, expected %s", path, pf.Family, f)
	}
	return pf.Key, nil
}

// saveKeyPair writes the key pair with tight permissions and the public key
// next to it. It returns both paths.
func saveKeyPair(prefix string, kp *pre.KeyPair, sch *crypto.Scheme) (string, string, error) {
	secretPath := prefix + secretExtension
	publicPath := prefix + publicExtension
	if err := key.Save(secretPath, &keyPairFile{KeyPair: kp, sch: sch}, true); err != nil {
		return "", "", err
	}
	pub := &publicFile{sch: sch, Family: kp.Family, Key: kp.Public}
	if err := key.Save(publicPath, pub, false); err != nil {
		return "", "", err
	}
	return secretPath, publicPath, nil
}
