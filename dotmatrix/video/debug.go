package video

// DebugGridSize is the side length of the full background/window debug images.
const DebugGridSize = 256

// DebugObjectGridSize is the side length of the object layer debug image.
// Its origin (0,0) corresponds to (-8,-16) in LCD coordinates, so every
// object position that can reach the LCD is representable; pixels beyond the
// grid are clipped.
const DebugObjectGridSize = 176

// ResolveBackground renders the full 256x256 background layer through the
// selected map and addressing mode, ignoring the background enable bit, and
// outlines the current viewport in black.
func (p *PPU) ResolveBackground() [DebugGridSize][DebugGridSize]Color {
	grid := p.resolveTileMap(p.bgTileMap())

	// horizontal edges of the viewport
	for i := 0; i < FrameWidth; i++ {
		top := int(p.ScrollY)
		bottom := (top + FrameHeight) % DebugGridSize
		x := (int(p.ScrollX) + i) % DebugGridSize
		grid[top][x] = Black
		grid[bottom][x] = Black
	}
	// vertical edges of the viewport
	for i := 0; i < FrameHeight; i++ {
		left := int(p.ScrollX)
		right := (left + FrameWidth) % DebugGridSize
		y := (int(p.ScrollY) + i) % DebugGridSize
		grid[y][left] = Black
		grid[y][right] = Black
	}
	return grid
}

// ResolveWindow renders the full 256x256 window layer through the selected
// map and addressing mode, ignoring the window enable bit.
func (p *PPU) ResolveWindow() [DebugGridSize][DebugGridSize]Color {
	return p.resolveTileMap(p.windowTileMap())
}

func (p *PPU) resolveTileMap(tileMap *TileMap) [DebugGridSize][DebugGridSize]Color {
	var grid [DebugGridSize][DebugGridSize]Color
	for tileY := 0; tileY < 32; tileY++ {
		for tileX := 0; tileX < 32; tileX++ {
			tile := p.bgWindowTile(tileMap.Indices[tileY][tileX])
			for lineIdx, line := range tile.Lines {
				for pixelIdx, id := range line.ColorIDs() {
					grid[tileY*8+lineIdx][tileX*8+pixelIdx] = p.BGPalette.Lookup(id)
				}
			}
		}
	}
	return grid
}

// ResolveObjects renders every OAM entry onto a 176x176 grid in its raw
// (y_pos, x_pos) coordinates and draws the LCD bounds in black. Objects are
// always drawn 8x8 here using unsigned addressing.
func (p *PPU) ResolveObjects() [DebugObjectGridSize][DebugObjectGridSize]Color {
	var grid [DebugObjectGridSize][DebugObjectGridSize]Color
	for y := range grid {
		for x := range grid {
			grid[y][x] = White
		}
	}

	for _, obj := range p.OAM {
		tile := p.TileData.TileAt8000(obj.TileIndex)
		var lines [8][8]ColorID
		for i, line := range tile.Lines {
			lines[i] = line.ColorIDs()
		}
		if obj.XFlip {
			for i := range lines {
				for a, b := 0, 7; a < b; a, b = a+1, b-1 {
					lines[i][a], lines[i][b] = lines[i][b], lines[i][a]
				}
			}
		}
		if obj.YFlip {
			for a, b := 0, 7; a < b; a, b = a+1, b-1 {
				lines[a], lines[b] = lines[b], lines[a]
			}
		}
		palette := p.ObjPalettes[obj.PaletteIndex&0x01]
		for yOffset, line := range lines {
			for xOffset, id := range line {
				x := int(obj.XPos) + xOffset
				y := int(obj.YPos) + yOffset
				if x < DebugObjectGridSize && y < DebugObjectGridSize {
					grid[y][x] = palette.Lookup(id)
				}
			}
		}
	}

	// LCD bounds: the visible area spans (8,16) to (168,160) on this grid.
	for y := 16; y <= 160; y++ {
		grid[y][8] = Black
		grid[y][168] = Black
	}
	for x := 8; x <= 168; x++ {
		grid[16][x] = Black
		grid[160][x] = Black
	}
	return grid
}
