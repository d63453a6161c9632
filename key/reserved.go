package key

// Reserved holds the fixed reserved-key byte strings every node carries:
// the lakehouse-definition pointer and the number-of-keys counter. These
// are produced directly from a LakehouseDef's reserved prefix and never
// collide with an encoder-produced user key, since a validated user name
// can never contain the reserved prefix byte.
type Reserved struct {
	LakehouseDefKey string
	NumKeysKey      string
}

// NewReserved builds the reserved key set from a reserved prefix (e.g.
// "\x00", the module's default — see objects.DefaultReservedPrefix).
func NewReserved(reservedPrefix string) Reserved {
	return Reserved{
		LakehouseDefKey: reservedPrefix + "lakehouse_def",
		NumKeysKey:      reservedPrefix + "num_keys",
	}
}

// IsReserved reports whether key carries the reserved prefix.
func (r Reserved) IsReserved(k string) bool {
	return len(k) > 0 && len(r.LakehouseDefKey) > 0 && hasPrefixByte(k, r.LakehouseDefKey[0])
}

func hasPrefixByte(s string, b byte) bool {
	return len(s) > 0 && s[0] == b
}
