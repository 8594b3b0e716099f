package control

import (
	"fmt"

	"cascade/pkg/engine/registry"
)

// KeyGen names the keys a single dialog or menu creates: "<prefix>-<n>".
// A zero Sep gives the "GUIButton7" style used for implicit controls.
type KeyGen struct {
	Prefix string
	Sep    string
	Loc    registry.Location
	count  int
}

// NewKeyGen returns a generator minting "<prefix>-<n>" names in loc.
func NewKeyGen(prefix string, loc registry.Location) *KeyGen {
	return &KeyGen{Prefix: prefix, Sep: "-", Loc: loc}
}

// Next returns the next name.
func (g *KeyGen) Next() string {
	name := fmt.Sprintf("%s%s%d", g.Prefix, g.Sep, g.count)
	g.count++
	return name
}

// Count returns how many names have been handed out.
func (g *KeyGen) Count() int { return g.count }

// Mint registers obj under the next name.
func (g *KeyGen) Mint(reg *registry.Registry, obj any) (registry.Key, error) {
	return reg.Mint(g.Next(), obj, g.Loc)
}
