package video

import "sort"

// drawScanline composites the background, window and object layers for the
// current line and returns the resulting 160 pixels.
func (p *PPU) drawScanline() DisplayLine {
	result := solidLine(White)
	if p.BGEnabled {
		result = solidLine(Black)
	}

	// The BG/window color IDs (not colors) are kept per column to resolve the
	// BG-over-OBJ priority flag in the object pass.
	var bgColorIDs [FrameWidth]ColorID

	if p.BGEnabled {
		bgY := p.ScrollY + p.Line // wraps at 256
		for col := 0; col < FrameWidth; col++ {
			bgX := p.ScrollX + uint8(col)
			tileIdx := p.bgTileMap().Indices[bgY/8][bgX/8]
			tile := p.bgWindowTile(tileIdx)
			id := tile.Lines[bgY%8].ColorIDs()[bgX%8]
			result.SetPixel(col, p.BGPalette.Lookup(id))
			bgColorIDs[col] = id
		}
	}

	// The window only shows when both it and the background are enabled and
	// its origin falls within WX 0-166, WY 0-143. It does not wrap.
	windowVisible := p.BGEnabled && p.WindowEnabled &&
		p.WindowY <= p.Line && p.WindowX <= 166 && p.WindowY <= 143
	if windowVisible {
		windowY := int(p.Line) - int(p.WindowY)
		for col := 0; col < FrameWidth; col++ {
			windowX := col + 7 - int(p.WindowX)
			if windowX < 0 {
				continue
			}
			tileIdx := p.windowTileMap().Indices[windowY/8][windowX/8]
			tile := p.bgWindowTile(tileIdx)
			id := tile.Lines[windowY%8].ColorIDs()[windowX%8]
			result.SetPixel(col, p.BGPalette.Lookup(id))
			bgColorIDs[col] = id
		}
	}

	if p.ObjEnabled {
		for _, obj := range p.objectsOnLine() {
			p.drawObject(obj, &result, &bgColorIDs)
		}
	}

	return result
}

// objectsOnLine returns the objects intersecting the current line, lowest
// priority first so later draws overwrite earlier ones.
//
// The hardware keeps at most the first 10 objects in OAM order, then draws
// them prioritized by ascending x position with OAM order breaking ties, so
// the snapshot needs a stable sort.
func (p *PPU) objectsOnLine() []ObjectAttributes {
	height := p.objHeight()
	line := int(p.Line)

	onLine := make([]ObjectAttributes, 0, 10)
	for _, obj := range p.OAM {
		top := int(obj.YPos) - 16
		if line >= top && line < top+height {
			onLine = append(onLine, obj)
			if len(onLine) == 10 {
				break
			}
		}
	}
	sort.SliceStable(onLine, func(i, j int) bool {
		return onLine[i].XPos < onLine[j].XPos
	})
	// reverse so the highest-priority object is drawn last
	for i, j := 0, len(onLine)-1; i < j; i, j = i+1, j-1 {
		onLine[i], onLine[j] = onLine[j], onLine[i]
	}
	return onLine
}

// drawObject blends one object row into the scanline.
func (p *PPU) drawObject(obj ObjectAttributes, result *DisplayLine, bgColorIDs *[FrameWidth]ColorID) {
	height := p.objHeight()

	lineIdx := int(p.Line) - (int(obj.YPos) - 16)
	if obj.YFlip {
		lineIdx = height - 1 - lineIdx
	}

	// Objects always use unsigned addressing. In 8x16 mode the low bit of the
	// tile index is ignored: the even tile is the top half, the odd one the
	// bottom.
	var row TileLine
	if lineIdx < 8 {
		tileIdx := obj.TileIndex
		if p.ObjSize8x16 {
			tileIdx &= 0xFE
		}
		row = p.TileData.TileAt8000(tileIdx).Lines[lineIdx]
	} else {
		row = p.TileData.TileAt8000((obj.TileIndex & 0xFE) + 1).Lines[lineIdx-8]
	}

	ids := row.ColorIDs()
	if obj.XFlip {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	palette := p.ObjPalettes[obj.PaletteIndex&0x01]
	for pixelIdx, id := range ids {
		col := int(obj.XPos) - 8 + pixelIdx
		if col < 0 || col >= FrameWidth {
			continue
		}
		// ID 0 is transparent for objects.
		if id == ID0 {
			continue
		}
		if obj.BGOverOBJ && bgColorIDs[col] != ID0 {
			continue
		}
		result.SetPixel(col, palette.Lookup(id))
	}
}
