package schematic

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MarshalBSONValue encodes the conn entry in the same [x, y, "port"] array
// form the JSON codec uses, so Couch and Mongo share one document shape.
func (c Conn) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]any{c.X, c.Y, c.Port})
}

// UnmarshalBSONValue decodes the [x, y, "port"] array form.
func (c *Conn) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw []any
	if err := bson.UnmarshalValue(t, data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("conn entry needs [x, y, port], got %d elements", len(raw))
	}
	x, err := bsonInt(raw[0])
	if err != nil {
		return fmt.Errorf("conn x: %w", err)
	}
	y, err := bsonInt(raw[1])
	if err != nil {
		return fmt.Errorf("conn y: %w", err)
	}
	p, ok := raw[2].(string)
	if !ok {
		return fmt.Errorf("conn port is not a string: %v", raw[2])
	}
	c.X, c.Y, c.Port = x, y, p
	return nil
}

// bsonInt accepts the numeric types the bson decoder may produce.
func bsonInt(v any) (int, error) {
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}
