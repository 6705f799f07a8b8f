package testutil

import "github.com/roach88/hotbar/internal/world"

// Item fixtures. Each call returns a fresh value.

func Pickaxe() *world.Item {
	return &world.Item{Name: "Pickaxe", Kind: world.KindTool, Tool: world.ToolPickaxe, Price: 50}
}

func Hoe(level int) *world.Item {
	return &world.Item{Name: "Hoe", Kind: world.KindTool, Tool: world.ToolHoe, UpgradeLevel: level}
}

func Scythe() *world.Item {
	return &world.Item{Name: "Scythe", Kind: world.KindMeleeWeapon, Tool: world.ToolScythe, Price: 1}
}

func Sword(name string, price int) *world.Item {
	return &world.Item{Name: name, Kind: world.KindMeleeWeapon, Tool: world.ToolSword, Price: price}
}

// Food returns an edible object.
func Food(name string, edibility, quality, price, stack int) *world.Item {
	return &world.Item{
		Name:      name,
		Kind:      world.KindObject,
		Edibility: edibility,
		Quality:   quality,
		Price:     price,
		Stack:     stack,
	}
}

// Material returns an inedible, non-placeable object such as Stone.
func Material(name string, stack int) *world.Item {
	return &world.Item{Name: name, Kind: world.KindObject, Edibility: world.Inedible, Stack: stack}
}

// Placeable returns an inedible object that can be put into the world.
func Placeable(name string, stack int) *world.Item {
	return &world.Item{Name: name, Kind: world.KindObject, Edibility: world.Inedible, Stack: stack, Placeable: true}
}
