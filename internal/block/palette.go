package block

// Definition captures the visual styling and occlusion behaviour for one
// block type. Transparent blocks never occlude neighbours during meshing.
type Definition struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Texture     string `json:"texture"`
	Transparent bool   `json:"transparent,omitempty"`
}

// Table maps block codes to their definitions.
type Table map[ID]Definition

// DefaultDefinitions enumerates the built-in block visuals shared with the
// generation worker and with connected clients.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: Grass, Name: "grass", Color: "#5d9b3d", Texture: "assets/textures/grass.png"},
		{ID: Dirt, Name: "dirt", Color: "#8b5a2b", Texture: "assets/textures/dirt.png"},
		{ID: Stone, Name: "stone", Color: "#8a8a8a", Texture: "assets/textures/stone.png"},
		{ID: Sand, Name: "sand", Color: "#c2b280", Texture: "assets/textures/sand.png"},
		{ID: Gravel, Name: "gravel", Color: "#9aa0a6", Texture: "assets/textures/gravel.png"},
		{ID: Wood, Name: "wood", Color: "#6b4a2b", Texture: "assets/textures/wood.png"},
		{ID: Leaves, Name: "leaves", Color: "#3f7a2e", Texture: "assets/textures/leaves.png", Transparent: true},
		{ID: Water, Name: "water", Color: "#3b6fd4", Texture: "assets/textures/water.png", Transparent: true},
		{ID: CoalOre, Name: "coal_ore", Color: "#2b2b2b", Texture: "assets/textures/coal_ore.png"},
		{ID: IronOre, Name: "iron_ore", Color: "#b7410e", Texture: "assets/textures/iron_ore.png"},
		{ID: GoldOre, Name: "gold_ore", Color: "#ffd700", Texture: "assets/textures/gold_ore.png"},
		{ID: Bedrock, Name: "bedrock", Color: "#1c1c1c", Texture: "assets/textures/bedrock.png"},
		{ID: Barrier, Name: "barrier", Color: "#000000", Texture: ""},
	}
}

// DefaultTable builds the lookup table for the built-in definitions.
func DefaultTable() Table {
	defs := DefaultDefinitions()
	table := make(Table, len(defs))
	for _, def := range defs {
		table[def.ID] = def
	}
	return table
}

// Opaque reports whether the block occludes its neighbours. Any nonzero code
// without a definition is treated as opaque.
func (t Table) Opaque(id ID) bool {
	if id == Air {
		return false
	}
	if def, ok := t[id]; ok {
		return !def.Transparent
	}
	return true
}
