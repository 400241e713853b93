package game_object

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Archive node names.
const (
	NodeObject    = "object"
	NodeComponent = "component"
)

func (g *gameObject) Save(node *archive.Node) error {
	node.Name = NodeObject
	node.SetString("type", g.typ.Name())
	node.SetString("name", g.name)
	node.SetString("guid", g.guid.String())
	node.SetBool("active", g.active)
	node.SetVec("position", g.transform.position[:]...)
	node.SetVec("rotation", g.transform.rotation[:]...)
	node.SetVec("scale", g.transform.scale[:]...)
	node.SetFloat("radius", g.radius)

	for _, c := range g.components {
		cn := node.AddChild(NodeComponent)
		cn.SetString("type", c.Rtti().Name())
		if err := c.Save(cn); err != nil {
			return fmt.Errorf("game_object: save %s on %q: %w", c.Rtti().Name(), g.name, err)
		}
	}
	for _, child := range g.children {
		if err := child.Save(node.AddChild(NodeObject)); err != nil {
			return err
		}
	}
	return nil
}

func (g *gameObject) Load(node *archive.Node, factory rtti.Factory) error {
	if g.destroyed {
		return ErrDestroyed
	}
	if node.Name != NodeObject {
		return fmt.Errorf("game_object: load: unexpected node %q", node.Name)
	}

	var err error
	if g.name, err = node.String("name"); err != nil {
		return err
	}
	if s := node.StringOr("guid", ""); s != "" {
		if g.guid, err = uuid.Parse(s); err != nil {
			return fmt.Errorf("game_object: load %q guid: %w", g.name, err)
		}
	}
	active := true
	if node.Has("active") {
		if active, err = node.Bool("active"); err != nil {
			return err
		}
	}
	if err := g.loadTransform(node); err != nil {
		return err
	}

	// Build the subtree inactive so each component activates exactly once at the end.
	was := g.ActiveInHierarchy()
	g.active = false
	if was {
		g.deactivateTree()
	}

	for _, child := range node.Children {
		switch child.Name {
		case NodeComponent:
			if err := g.loadComponent(child, factory); err != nil {
				return err
			}
		case NodeObject:
			if err := g.loadChild(child, factory); err != nil {
				return err
			}
		}
	}

	if !active {
		return nil
	}
	return g.SetActive(true)
}

func (g *gameObject) loadTransform(node *archive.Node) error {
	var result *multierror.Error
	load := func(key string, dst *[3]float32) {
		if !node.Has(key) {
			return
		}
		v, err := node.Vec3(key)
		if err != nil {
			result = multierror.Append(result, err)
			return
		}
		*dst = v
	}
	load("position", &g.transform.position)
	load("rotation", &g.transform.rotation)
	load("scale", &g.transform.scale)
	if node.Has("radius") {
		r, err := node.Float("radius")
		if err != nil {
			result = multierror.Append(result, err)
		}
		g.radius = r
	}
	g.invalidate()
	return result.ErrorOrNil()
}

func (g *gameObject) loadComponent(node *archive.Node, factory rtti.Factory) error {
	name, err := node.String("type")
	if err != nil {
		return err
	}
	c, ok := factory.CreateObject(name, ComponentRtti).(Component)
	if !ok {
		return fmt.Errorf("game_object: load component %q on %q: %w", name, g.name, ErrUnknownType)
	}
	if err := c.Load(node); err != nil {
		return fmt.Errorf("game_object: load %s on %q: %w", name, g.name, err)
	}
	return g.AddComponent(c)
}

func (g *gameObject) loadChild(node *archive.Node, factory rtti.Factory) error {
	name := node.StringOr("type", GameObjectRtti.Name())
	child, ok := factory.CreateObject(name, GameObjectRtti).(GameObject)
	if !ok {
		return fmt.Errorf("game_object: load child %q of %q: %w", name, g.name, ErrUnknownType)
	}
	if err := g.AddChild(child); err != nil {
		return err
	}
	return child.Load(node, factory)
}
