package layout

import "go.bytecodealliance.org/wit"

// Calculator computes layouts, caching results per type definition.
// It is not safe for concurrent use.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

// Calculate returns the layout of t. Types with no fixed-size layout
// (strings, lists, resource handles) report size 0 and alignment 1;
// callers validate types before laying them out.
func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case *wit.TypeDef:
		return c.typeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) typeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info
	switch kind := t.Kind.(type) {
	case *wit.Record:
		names := make([]string, len(kind.Fields))
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			names[i] = f.Name
			types[i] = f.Type
		}
		info = c.sequence(names, types)
	case *wit.Tuple:
		info = c.sequence(nil, kind.Types)
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = flags(len(kind.Flags))
	case *wit.Variant:
		cases := make([]Info, 0, len(kind.Cases))
		for _, cs := range kind.Cases {
			if cs.Type != nil {
				cases = append(cases, c.Calculate(cs.Type))
			}
		}
		if len(kind.Cases) == 0 {
			info = Info{Size: 0, Align: 1}
		} else {
			info = tagged(DiscriminantSize(len(kind.Cases)), Union(cases...))
		}
	case *wit.Option:
		info = tagged(1, c.Calculate(kind.Type))
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// sequence lays out types in order. Offsets are recorded under names when
// names is non-nil.
func (c *Calculator) sequence(names []string, types []wit.Type) Info {
	if len(types) == 0 {
		return Info{Size: 0, Align: 1}
	}

	var offs map[string]uint32
	if names != nil {
		offs = make(map[string]uint32, len(names))
	}
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, typ := range types {
		elem := c.Calculate(typ)
		offset = AlignTo(offset, elem.Align)
		if offs != nil {
			offs[names[i]] = offset
		}
		if elem.Align > maxAlign {
			maxAlign = elem.Align
		}
		offset += elem.Size
	}

	return Info{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: offs,
	}
}

// tagged lays out a discriminant of discSize bytes followed by payload.
func tagged(discSize uint32, payload Info) Info {
	align := payload.Align
	if discSize > align {
		align = discSize
	}
	offset := AlignTo(discSize, align)
	return Info{
		Size:  AlignTo(offset+payload.Size, align),
		Align: align,
	}
}

func flags(n int) Info {
	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	case n <= 32:
		return Info{Size: 4, Align: 4}
	case n <= 64:
		return Info{Size: 8, Align: 8}
	}
	// more than 64 flags: one u32 per 32 flags
	return Info{Size: uint32((n + 31) / 32 * 4), Align: 4}
}
