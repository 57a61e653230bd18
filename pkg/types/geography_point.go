package types

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeographyPoint maps a geography(Point,4326) column. Longitude and latitude
// follow the PostGIS axis order: POINT(lng lat).
type GeographyPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Value writes the point as an EWKT literal, which Postgres casts to
// geography on insert.
func (g GeographyPoint) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=4326;POINT(%f %f)", g.Lng, g.Lat), nil
}

// Scan accepts the three shapes Postgres hands back: EWKT text, hex-encoded
// EWKB (the PostGIS default), or raw (E)WKB bytes.
func (g *GeographyPoint) Scan(value interface{}) error {
	if value == nil {
		*g = GeographyPoint{}
		return nil
	}

	switch v := value.(type) {
	case string:
		return g.parseText(v)
	case []byte:
		text := strings.TrimSpace(string(v))
		if looksLikeWKT(text) {
			return g.parseText(text)
		}
		if decoded, err := hex.DecodeString(text); err == nil {
			return g.parseEWKB(decoded)
		}
		return g.parseEWKB(v)
	default:
		if stringer, ok := value.(fmt.Stringer); ok {
			return g.parseText(stringer.String())
		}
		return fmt.Errorf("geography: unsupported scan type %T", value)
	}
}

func looksLikeWKT(text string) bool {
	upper := strings.ToUpper(text)
	return strings.HasPrefix(upper, "SRID=") || strings.HasPrefix(upper, "POINT(")
}

func (g *GeographyPoint) parseText(raw string) error {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(raw), "SRID=") {
		if idx := strings.Index(raw, ";"); idx != -1 {
			raw = strings.TrimSpace(raw[idx+1:])
		}
	}
	if !strings.HasPrefix(strings.ToUpper(raw), "POINT(") || !strings.HasSuffix(raw, ")") {
		return fmt.Errorf("geography: unsupported text %q", raw)
	}

	coords := strings.Fields(raw[len("POINT(") : len(raw)-1])
	if len(coords) != 2 {
		return fmt.Errorf("geography: unexpected POINT content %q", raw)
	}

	lng, err := parseCoordinate(coords[0])
	if err != nil {
		return err
	}
	lat, err := parseCoordinate(coords[1])
	if err != nil {
		return err
	}
	g.Lng, g.Lat = lng, lat
	return nil
}

// ewkbSRIDFlag marks an EWKB geometry that carries an embedded SRID.
const ewkbSRIDFlag = 0x20000000

func (g *GeographyPoint) parseEWKB(raw []byte) error {
	if len(raw) < 21 {
		return fmt.Errorf("geography: wkb too short (%d bytes)", len(raw))
	}

	var order binary.ByteOrder
	switch raw[0] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return fmt.Errorf("geography: invalid byte order %d", raw[0])
	}

	geomType := order.Uint32(raw[1:5])
	body := raw[5:]
	if geomType&ewkbSRIDFlag != 0 {
		geomType &^= ewkbSRIDFlag
		if len(body) < 20 {
			return fmt.Errorf("geography: ewkb missing srid")
		}
		body = body[4:]
	}
	if geomType != 1 {
		return fmt.Errorf("geography: unexpected geometry type %d", geomType)
	}
	if len(body) < 16 {
		return fmt.Errorf("geography: wkb missing coordinates")
	}

	g.Lng = math.Float64frombits(order.Uint64(body[0:8]))
	g.Lat = math.Float64frombits(order.Uint64(body[8:16]))
	return nil
}

func parseCoordinate(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("geography: empty coordinate")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("geography: parse coordinate %w", err)
	}
	return f, nil
}
