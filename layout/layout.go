package layout

// Info is the memory layout of a type.
type Info struct {
	// FieldOffs maps record field names to byte offsets. Nil for
	// non-record types.
	FieldOffs map[string]uint32
	Size      uint32
	Align     uint32
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize returns the size of the discriminant for a type with
// numCases cases.
func DiscriminantSize(numCases int) uint32 {
	switch {
	case numCases <= 1<<8:
		return 1
	case numCases <= 1<<16:
		return 2
	default:
		return 4
	}
}

// Union returns the layout of a cell that can hold any one of infos at
// offset zero. An empty union has size 0 and alignment 1.
func Union(infos ...Info) Info {
	u := Info{Align: 1}
	for _, info := range infos {
		if info.Size > u.Size {
			u.Size = info.Size
		}
		if info.Align > u.Align {
			u.Align = info.Align
		}
	}
	u.Size = AlignTo(u.Size, u.Align)
	return u
}

// Fits reports whether a value with layout inner can be stored at offset
// zero of a cell with layout outer.
func Fits(inner, outer Info) bool {
	return inner.Size <= outer.Size && inner.Align <= outer.Align
}
