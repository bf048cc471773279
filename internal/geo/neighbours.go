package geo

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal directions used for adjacency lookups.
type Direction string

const (
	North Direction = "n"
	South Direction = "s"
	East  Direction = "e"
	West  Direction = "w"
)

// ParseDirection accepts "n", "s", "e" or "w" in either case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(s))
	if _, ok := neighbourTable[d]; !ok {
		return "", fmt.Errorf("%w: %q must be one of n, s, e, w", ErrInvalidDirection, s)
	}
	return d, nil
}

// Lookup tables for adjacency, indexed by direction and then by the parity of
// the hash length. Index 0 is used for even lengths, index 1 for odd lengths:
// the geohash algorithm alternates between longitude and latitude bits, so the
// 5 bits of the last character form a 4x8 grid for even lengths and an 8x4
// grid for odd lengths.
//
// neighbourTable[d][p][i] is the character whose cell lies in direction d of
// the cell of base32[i]. borderTable[d][p] lists the characters on the d edge
// of their parent cell; moving past them changes the parent as well.
var (
	neighbourTable = map[Direction][2]string{
		North: {"p0r21436x8zb9dcf5h7kjnmqesgutwvy", "bc01fg45238967deuvhjyznpkmstqrwx"},
		South: {"14365h7k9dcfesgujnmqp0r2twvyx8zb", "238967debc01fg45kmstqrwxuvhjyznp"},
		East:  {"bc01fg45238967deuvhjyznpkmstqrwx", "p0r21436x8zb9dcf5h7kjnmqesgutwvy"},
		West:  {"238967debc01fg45kmstqrwxuvhjyznp", "14365h7k9dcfesgujnmqp0r2twvyx8zb"},
	}
	borderTable = map[Direction][2]string{
		North: {"prxz", "bcfguvyz"},
		South: {"028b", "0145hjnp"},
		East:  {"bcfguvyz", "prxz"},
		West:  {"0145hjnp", "028b"},
	}
)

// NeighbourSet holds the eight cells surrounding a geohash.
type NeighbourSet struct {
	N  string `json:"n"`
	NE string `json:"ne"`
	E  string `json:"e"`
	SE string `json:"se"`
	S  string `json:"s"`
	SW string `json:"sw"`
	W  string `json:"w"`
	NW string `json:"nw"`
}

// List returns the neighbours in the order nw, n, ne, w, e, sw, s, se: the
// 3x3 grid read row by row with the centre left out.
func (ns NeighbourSet) List() []string {
	return []string{ns.NW, ns.N, ns.NE, ns.W, ns.E, ns.SW, ns.S, ns.SE}
}

// Adjacent returns the geohash of the same length next to hash in direction
// dir. The algorithm looks at the last character of the hash and finds its
// neighbour using the lookup tables, recursing into the parent hash when the
// character is on the border of its parent's cell.
//
// Moving east or west across the antimeridian wraps around the globe. Moving
// north (south) from a cell that touches the north (south) pole has no
// neighbouring cell; hash is returned unchanged in that case.
// dir is matched in either case, like ParseDirection.
func Adjacent(hash string, dir Direction) (string, error) {
	if err := ValidateGeohash(hash); err != nil {
		return "", err
	}
	dir = Direction(strings.ToLower(string(dir)))
	if _, ok := neighbourTable[dir]; !ok {
		return "", fmt.Errorf("%w: %q must be one of n, s, e, w", ErrInvalidDirection, string(dir))
	}
	return adjacent(strings.ToLower(hash), dir), nil
}

// adjacent assumes a validated, lower-case hash and a known direction.
func adjacent(hash string, dir Direction) string {
	next, crossedPole := step(hash, dir)
	if crossedPole {
		return hash
	}
	return next
}

// step performs one table-driven move. crossedPole is set when a north or
// south move had to carry past the first character, i.e. the tables wrapped
// the cell to the opposite edge of the map.
func step(hash string, dir Direction) (next string, crossedPole bool) {
	last := hash[len(hash)-1]
	parent := hash[:len(hash)-1]
	parity := len(hash) % 2

	if strings.IndexByte(borderTable[dir][parity], last) >= 0 {
		if parent == "" {
			crossedPole = dir == North || dir == South
		} else {
			parent, crossedPole = step(parent, dir)
		}
	}

	idx := strings.IndexByte(neighbourTable[dir][parity], last)
	return parent + string(base32[idx]), crossedPole
}

// Neighbours returns all 8 cells around hash. Diagonals are computed by
// chaining two Adjacent calls, resolving north/south first.
func Neighbours(hash string) (NeighbourSet, error) {
	if err := ValidateGeohash(hash); err != nil {
		return NeighbourSet{}, err
	}
	hash = strings.ToLower(hash)

	n := adjacent(hash, North)
	s := adjacent(hash, South)
	return NeighbourSet{
		N:  n,
		NE: adjacent(n, East),
		E:  adjacent(hash, East),
		SE: adjacent(s, East),
		S:  s,
		SW: adjacent(s, West),
		W:  adjacent(hash, West),
		NW: adjacent(n, West),
	}, nil
}

// NeighbourList returns the 8 neighbours of hash in the order
// [nw, n, ne, w, e, sw, s, se]. Callers that want the full 3x3 grid insert
// the centre at index 4.
func NeighbourList(hash string) ([]string, error) {
	ns, err := Neighbours(hash)
	if err != nil {
		return nil, err
	}
	return ns.List(), nil
}
