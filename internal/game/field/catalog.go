package field

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/dolthub/swiss"
)

//go:embed fleet.json
var defaultFleet []byte

// ShipSpec is an immutable ship definition. W and H describe the
// footprint in horizontal orientation.
type ShipSpec struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	W    int64  `json:"width"`
	H    int64  `json:"height"`
}

func (s ShipSpec) Cells() int {
	return int(s.W * s.H)
}

func (s ShipSpec) IsValid() error {
	if s.W <= 0 || s.H <= 0 {
		return fmt.Errorf("%w: ship %q has non-positive footprint [%d %d]", ErrConfiguration, s.Name, s.W, s.H)
	}
	return nil
}

// Catalog is a finite ordered set of ship specs with unique ids.
type Catalog struct {
	specs []ShipSpec
	byID  *swiss.Map[int, int]
}

func NewCatalog(specs ...ShipSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: empty ship catalog", ErrConfiguration)
	}

	c := &Catalog{
		specs: make([]ShipSpec, 0, len(specs)),
		byID:  swiss.NewMap[int, int](uint32(len(specs))),
	}

	for _, spec := range specs {
		if err := spec.IsValid(); err != nil {
			return nil, err
		}

		if c.byID.Has(spec.ID) {
			return nil, fmt.Errorf("%w: duplicate ship spec id %d", ErrConfiguration, spec.ID)
		}

		c.byID.Put(spec.ID, len(c.specs))
		c.specs = append(c.specs, spec)
	}

	return c, nil
}

// Parses a JSON array of specs.
func LoadCatalog(data []byte) (*Catalog, error) {
	var specs []ShipSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ship catalog: %w", ErrConfiguration, err)
	}
	return NewCatalog(specs...)
}

// The classic five-ship fleet.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(defaultFleet)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(id int) (ShipSpec, error) {
	idx, ok := c.byID.Get(id)
	if !ok {
		return ShipSpec{}, fmt.Errorf("%w: unknown ship spec id %d", ErrConfiguration, id)
	}
	return c.specs[idx], nil
}

func (c *Catalog) ByName(name string) (ShipSpec, bool) {
	for _, spec := range c.specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return ShipSpec{}, false
}

func (c *Catalog) Specs() []ShipSpec {
	out := make([]ShipSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

func (c *Catalog) Len() int {
	return len(c.specs)
}
