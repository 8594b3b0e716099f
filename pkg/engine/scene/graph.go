package scene

import (
	"image/color"

	"cascade/pkg/engine/registry"
)

// Reference slots used by scene objects.
const (
	SlotMember registry.Slot = iota + 100
	SlotDrawable
	SlotMaterial
	SlotTexture
	SlotChild
	SlotParent
)

// Texture wraps a Surface so it can live in the registry. Destroying the key
// disposes the surface.
type Texture struct {
	Surface Surface
}

// Destroy implements registry.Destroyer.
func (t *Texture) Destroy() {
	if t.Surface != nil {
		t.Surface.Dispose()
		t.Surface = nil
	}
}

// Material is a single-layer material: a base colour and an optional texture.
type Material struct {
	Base    color.Color
	Texture *Texture
}

// ReceiveRef implements registry.Receiver.
func (m *Material) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != SlotTexture {
		return false
	}
	if msg.Context.Attaches() {
		m.Texture, _ = msg.Ref.(*Texture)
	} else {
		m.Texture = nil
	}
	return true
}

// MeshKind is the shape of a generated drawable.
type MeshKind int

const (
	MeshPlanar MeshKind = iota
	MeshSpherical
	MeshBox
)

func (k MeshKind) String() string {
	switch k {
	case MeshPlanar:
		return "planar"
	case MeshSpherical:
		return "spherical"
	case MeshBox:
		return "box"
	}
	return "unknown"
}

// Mesh is a generated drawable. Geometry is kept as origin plus extent
// vectors; backends tessellate it however they like.
type Mesh struct {
	Kind     MeshKind
	Origin   Vec3
	U, V, W  Vec3
	Radius   float64
	Local    Transform
	Material *Material
}

// GeneratePlanar returns a quad spanning origin, origin+u, origin+u+v, origin+v.
func GeneratePlanar(origin, u, v Vec3, xform Transform) *Mesh {
	return &Mesh{Kind: MeshPlanar, Origin: origin, U: u, V: v, Local: xform}
}

// GenerateSpherical returns a sphere of radius r around center.
func GenerateSpherical(center Vec3, r float64, xform Transform) *Mesh {
	return &Mesh{Kind: MeshSpherical, Origin: center, Radius: r, Local: xform}
}

// GenerateBox returns a box spanned by u, v and w from corner.
func GenerateBox(corner, u, v, w Vec3, xform Transform) *Mesh {
	return &Mesh{Kind: MeshBox, Origin: corner, U: u, V: v, W: w, Local: xform}
}

// LocalBounds returns the mesh bounds in its owner's space.
func (m *Mesh) LocalBounds() Bounds {
	if m.Kind == MeshSpherical {
		r := Vec3{m.Radius, m.Radius, m.Radius}
		c := m.Local.Apply(m.Origin)
		return Bounds{Min: c.Sub(r), Max: c.Add(r)}
	}
	p := m.Local.Apply(m.Origin)
	b := Bounds{Min: p, Max: p}
	corners := []Vec3{m.U, m.V, m.W, m.U.Add(m.V), m.U.Add(m.W), m.V.Add(m.W), m.U.Add(m.V).Add(m.W)}
	for _, c := range corners {
		b = b.Extend(m.Local.Apply(m.Origin.Add(c)))
	}
	return b
}

// ReceiveRef implements registry.Receiver.
func (m *Mesh) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != SlotMaterial {
		return false
	}
	if msg.Context.Attaches() {
		m.Material, _ = msg.Ref.(*Material)
	} else {
		m.Material = nil
	}
	return true
}

// Object is a placed scene object: a transform, an optional drawable, a
// placement parent and membership in a scene group.
type Object struct {
	reg      *registry.Registry
	key      registry.Key
	group    *Group
	parent   *Object
	children []*Object
	mesh     *Mesh
	local    Transform
}

// NewObject mints a scene object in loc.
func NewObject(reg *registry.Registry, name string, loc registry.Location) (*Object, error) {
	o := &Object{reg: reg, local: Identity}
	k, err := reg.Mint(name, o, loc)
	if err != nil {
		return nil, err
	}
	o.key = k
	return o, nil
}

// Key returns the object's registry key.
func (o *Object) Key() registry.Key { return o.key }

// Mesh returns the attached drawable, if resolved.
func (o *Object) Mesh() *Mesh { return o.mesh }

// Group returns the scene group the object belongs to.
func (o *Object) Group() *Group { return o.group }

// Parent returns the placement parent.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the placement children.
func (o *Object) Children() []*Object { return o.children }

// AttachDrawable makes the object hold an active reference on the drawable key.
func (o *Object) AttachDrawable(drawable registry.Key) error {
	_, err := o.reg.RequestImmediate(drawable, o.key, registry.Active, SlotDrawable, 0)
	return err
}

// SetTransform sets the transform relative to the placement parent.
func (o *Object) SetTransform(t Transform) { o.local = t }

// Transform returns the local transform.
func (o *Object) Transform() Transform { return o.local }

// WorldTransform composes the placement chain.
func (o *Object) WorldTransform() Transform {
	t := o.local
	for p := o.parent; p != nil; p = p.parent {
		t = t.Then(p.local)
	}
	return t
}

// WorldBounds returns the drawable bounds in world space. Objects without a
// drawable report a point at their world translation.
func (o *Object) WorldBounds() Bounds {
	w := o.WorldTransform()
	if o.mesh == nil {
		p := w.Apply(Vec3{})
		return Bounds{Min: p, Max: p}
	}
	lb := o.mesh.LocalBounds()
	b := Bounds{Min: w.Apply(lb.Min), Max: w.Apply(lb.Min)}
	return b.Extend(w.Apply(lb.Max))
}

// SetGroup moves the object into g (nil removes it from its group). The
// group holds an active reference on its members, so an object that is still
// grouped is not freed when its other holders release it.
func (o *Object) SetGroup(g *Group) error {
	if o.group == g {
		return nil
	}
	if old := o.group; old != nil {
		o.group = nil
		old.removeMember(o)
		if err := o.reg.Release(old.key, o.key); err != nil {
			return err
		}
	}
	if g != nil {
		if _, err := o.reg.RequestImmediate(o.key, g.key, registry.Active, SlotMember, 0); err != nil {
			return err
		}
		o.group = g
	}
	return nil
}

// AttachChild places child under parent. Both ends hold passive references
// so either side can be destroyed first without leaving a dangling pointer.
func AttachChild(parent, child *Object) error {
	if child.parent != nil {
		DetachChild(child)
	}
	reg := parent.reg
	if _, err := reg.RequestImmediate(child.key, parent.key, registry.Passive, SlotChild, 0); err != nil {
		return err
	}
	if _, err := reg.RequestImmediate(parent.key, child.key, registry.Passive, SlotParent, 0); err != nil {
		return err
	}
	return nil
}

// DetachChild removes child from its placement parent.
func DetachChild(child *Object) {
	p := child.parent
	if p == nil {
		return
	}
	if p.reg.IsValid(p.key) {
		_ = p.reg.Release(p.key, child.key)
	}
	_ = child.reg.Release(child.key, p.key)
	p.removeChild(child)
	child.parent = nil
}

func (o *Object) removeChild(c *Object) {
	for i, x := range o.children {
		if x == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// ReceiveRef implements registry.Receiver.
func (o *Object) ReceiveRef(msg *registry.RefMsg) bool {
	switch msg.Slot {
	case SlotDrawable:
		if msg.Context.Attaches() {
			o.mesh, _ = msg.Ref.(*Mesh)
		} else {
			o.mesh = nil
		}
		return true
	case SlotChild:
		c, _ := msg.Ref.(*Object)
		if msg.Context.Attaches() && c != nil {
			o.children = append(o.children, c)
		} else if !msg.Context.Attaches() {
			for i, x := range o.children {
				if x.key == msg.Target {
					o.children = append(o.children[:i], o.children[i+1:]...)
					break
				}
			}
		}
		return true
	case SlotParent:
		if msg.Context.Attaches() {
			o.parent, _ = msg.Ref.(*Object)
		} else {
			o.parent = nil
		}
		return true
	}
	return false
}

// Group is a scene node: the set of objects drawn together. It retains its
// members with active references.
type Group struct {
	reg     *registry.Registry
	key     registry.Key
	members []*Object
}

// NewGroup mints a scene group in loc.
func NewGroup(reg *registry.Registry, name string, loc registry.Location) (*Group, error) {
	g := &Group{reg: reg}
	k, err := reg.Mint(name, g, loc)
	if err != nil {
		return nil, err
	}
	g.key = k
	return g, nil
}

// Key returns the group's registry key.
func (g *Group) Key() registry.Key { return g.key }

// Members returns the objects currently in the group.
func (g *Group) Members() []*Object { return g.members }

func (g *Group) removeMember(o *Object) {
	for i, m := range g.members {
		if m == o {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return
		}
	}
}

// ReceiveRef implements registry.Receiver.
func (g *Group) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != SlotMember {
		return false
	}
	o, _ := msg.Ref.(*Object)
	if msg.Context.Attaches() && o != nil {
		g.members = append(g.members, o)
		return true
	}
	for _, m := range g.members {
		if m.key == msg.Target {
			m.group = nil
			g.removeMember(m)
			break
		}
	}
	return true
}

// Destroy implements registry.Destroyer.
func (g *Group) Destroy() {
	for _, m := range g.members {
		m.group = nil
	}
	g.members = nil
}
