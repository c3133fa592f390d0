package types

import "time"

// AreaTask represents a single source map image queued for masking
type AreaTask struct {
	Index  int
	Source string // Path to the source raster
	Target string // Path of the sprite to write
}

// AreaRecord is one entry of the generated manifest
type AreaRecord struct {
	Ordinate       int    `json:"Ordinate"` // 1-based, in sprite enumeration order
	LatinName      string `json:"LatinName"`
	NativeName     string `json:"NativeName"`
	PhoneticName   string `json:"PhoneticName"`
	SpriteLocation string `json:"SpriteLocation"` // <superregion>/<area_type>/<name>, no extension
}

// Atlas describes one generated sprite set as recorded in the catalog
type Atlas struct {
	ID          int
	Superregion string
	AreaType    string
	OutputRoot  string
	AreaCount   int
	GeneratedAt time.Time
}
