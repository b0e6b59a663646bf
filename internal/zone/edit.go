package zone

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MinPoints is the smallest polygon a stored zone may have.
const MinPoints = 3

// Validate reports whether z can be stored: a known type and at least
// MinPoints points.
func (z Zone) Validate() error {
	if z.Type != Core && z.Type != Warning {
		return fmt.Errorf("%w: unknown zone type %q", ErrInvalid, z.Type)
	}
	if len(z.Points) < MinPoints {
		return fmt.Errorf("%w: polygon needs at least %d points, got %d", ErrInvalid, MinPoints, len(z.Points))
	}
	return nil
}

// ParseOne decodes a single zone mapping. A missing type defaults to Core.
func ParseOne(data []byte) (Zone, error) {
	node, err := mapping(data)
	if err != nil {
		return Zone{}, err
	}
	var r rawZone
	if err := node.Decode(&r); err != nil {
		return Zone{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	z := r.canonical()
	if z.Type == "" {
		z.Type = Core
	}
	return z, z.Validate()
}

// Patch applies the keys present in data to z. The id cannot be changed.
func Patch(z Zone, data []byte) (Zone, error) {
	node, err := mapping(data)
	if err != nil {
		return z, err
	}
	present := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		present[node.Content[i].Value] = true
	}
	var r rawZone
	if err := node.Decode(&r); err != nil {
		return z, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	c := r.canonical()
	if present["name"] || present["zone_name"] || present["zoneName"] {
		z.Name = c.Name
	}
	if present["type"] || present["zone_type"] {
		z.Type = c.Type
	}
	if present["points"] || present["polygonPoints"] {
		z.Points = c.Points
	}
	return z, z.Validate()
}

func mapping(data []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty zone", ErrInvalid)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a zone mapping", ErrInvalid)
	}
	return doc, nil
}
