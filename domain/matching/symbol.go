package matching

// Symbol identifies a tradable instrument. The name is opaque to
// matching; only the id takes part in routing.
type Symbol struct {
	ID   uint32
	Name string
}

// NewSymbol returns a symbol descriptor.
func NewSymbol(id uint32, name string) Symbol {
	return Symbol{ID: id, Name: name}
}
