package pre

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/crypto"
)

// Params holds the public generators g in G1 and h in G2 shared by all the
// parties. Params are immutable once built and safe for concurrent use.
type Params struct {
	Scheme *crypto.Scheme
	G      kyber.Point
	H      kyber.Point
	// z = e(g, h), computed once
	z kyber.Point
}

// Setup derives the public parameters. When fromSeedHash is set, g and h are
// obtained by hashing the seeds onto G1 and G2 respectively. Otherwise the
// seeds must be the hex encodings of a G1 and a G2 point. A nil scheme selects
// crypto.DefaultSchemeID.
func Setup(gSeed, hSeed string, sch *crypto.Scheme, fromSeedHash bool) (*Params, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	if !fromSeedHash {
		return NewParams(sch, PointHex(gSeed), PointHex(hSeed))
	}

	g, err := sch.HashToG1([]byte(gSeed))
	if err != nil {
		return nil, err
	}
	h, err := sch.HashToG2([]byte(hSeed))
	if err != nil {
		return nil, err
	}
	return NewParams(sch, PointValue(g), PointValue(h))
}

// NewParams builds the parameters from existing generators.
func NewParams(sch *crypto.Scheme, g, h PointInput) (*Params, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	gp, err := decodePoint(g, sch.G1)
	if err != nil {
		return nil, fmt.Errorf("generator g: %w", err)
	}
	hp, err := decodePoint(h, sch.G2)
	if err != nil {
		return nil, fmt.Errorf("generator h: %w", err)
	}
	if gp.Equal(sch.G1.Point().Null()) || hp.Equal(sch.G2.Point().Null()) {
		return nil, ErrDegenerateGenerator
	}
	return &Params{
		Scheme: sch,
		G:      gp,
		H:      hp,
		z:      sch.Pair(gp, hp),
	}, nil
}

// Validate returns ErrNilInput for nil parameters and for parameters not
// built by Setup, NewParams or FromTOML.
func (p *Params) Validate() error {
	if p == nil || p.Scheme == nil || p.G == nil || p.H == nil || p.z == nil {
		return ErrNilInput
	}
	return nil
}

// Z returns e(g, h).
func (p *Params) Z() kyber.Point {
	return p.z.Clone()
}

// Generator returns the generator of the given family: g for G1, h for G2.
func (p *Params) Generator(f Family) (kyber.Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch f {
	case G1:
		return p.G, nil
	case G2:
		return p.H, nil
	default:
		return nil, ErrUnknownFamily
	}
}

// Equal returns true if both parameters use the same scheme and generators.
func (p *Params) Equal(p2 *Params) bool {
	return p.Scheme.Name == p2.Scheme.Name && p.G.Equal(p2.G) && p.H.Equal(p2.H)
}

// ParamsTOML is the TOML-able version of the public parameters
type ParamsTOML struct {
	Scheme string
	G      string
	H      string
}

// TOML returns a struct that can be marshalled using a TOML-encoding library
func (p *Params) TOML() interface{} {
	return &ParamsTOML{
		Scheme: p.Scheme.Name,
		G:      key.PointToString(p.G),
		H:      key.PointToString(p.H),
	}
}

// FromTOML reconstructs the parameters from an unmarshalled TOML structure
func (p *Params) FromTOML(i interface{}) error {
	ptoml, ok := i.(*ParamsTOML)
	if !ok {
		return errors.New("params can't decode toml from non ParamsTOML struct")
	}
	sch, err := crypto.GetSchemeByIDWithDefault(ptoml.Scheme)
	if err != nil {
		return err
	}
	np, err := NewParams(sch, PointHex(ptoml.G), PointHex(ptoml.H))
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

// TOMLValue returns an empty TOML-compatible interface value
func (p *Params) TOMLValue() interface{} {
	return &ParamsTOML{}
}

func schemeOrDefault(sch *crypto.Scheme) (*crypto.Scheme, error) {
	if sch != nil {
		return sch, nil
	}
	return crypto.GetSchemeByIDWithDefault("")
}
