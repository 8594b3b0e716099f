package skin

import (
	"fmt"

	"gopkg.in/ini.v1"

	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
)

// LoadFile reads a skin descriptor:
//
//	[skin]
//	item_margin = 2
//	border_margin = 6
//	texture = GUISkinAtlas
//
//	[elements]
//	up_left_corner = 0,0,8,8
//	...
//
// The texture is looked up by name in loc and resolves on a later Pump.
func LoadFile(reg *registry.Registry, name string, loc registry.Location, path string) (*Skin, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load skin %s: %w", path, err)
	}

	s, err := New(reg, name, loc)
	if err != nil {
		return nil, err
	}

	sec := f.Section("skin")
	im := sec.Key("item_margin").MustInt(0)
	bm := sec.Key("border_margin").MustInt(0)
	if im < 0 || im > 0xFFFF || bm < 0 || bm > 0xFFFF {
		_ = reg.Unregister(s.key)
		return nil, fmt.Errorf("skin %s: margins %d/%d out of range", path, im, bm)
	}
	s.ItemMargin = uint16(im)
	s.BorderMargin = uint16(bm)

	elems := f.Section("elements")
	for e := Element(0); e < NumElements; e++ {
		if !elems.HasKey(e.String()) {
			continue
		}
		v := elems.Key(e.String()).Ints(",")
		if len(v) != 4 {
			_ = reg.Unregister(s.key)
			return nil, fmt.Errorf("skin %s: %s wants x,y,w,h, got %d values", path, e, len(v))
		}
		for _, n := range v {
			if n < 0 || n > 0xFFFF {
				_ = reg.Unregister(s.key)
				return nil, fmt.Errorf("skin %s: %s value %d out of range", path, e, n)
			}
		}
		s.SetElement(e, uint16(v[0]), uint16(v[1]), uint16(v[2]), uint16(v[3]))
	}

	if tex := sec.Key("texture").String(); tex != "" {
		k, err := reg.RequestByName(tex, loc, s.key, registry.Active, scene.SlotTexture, -1)
		if err != nil {
			_ = reg.Unregister(s.key)
			return nil, err
		}
		s.texKey = k
	}
	return s, nil
}
