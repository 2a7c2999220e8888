package feed

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Properties is an entry's property bag. Insertion order follows document
// order, which the protocol requires to be preserved.
type Properties struct {
	order  []string
	byName map[string]Value
}

// Value is one property value as it appeared on the wire, together with
// its declared EDM type. An empty Type means Edm.String.
type Value struct {
	Type string
	Null bool
	Raw  string
}

// Names returns the property names in document order.
func (p Properties) Names() []string {
	return append([]string(nil), p.order...)
}

// Get looks up a property by name.
func (p Properties) Get(name string) (Value, bool) {
	v, ok := p.byName[name]
	return v, ok
}

// Len returns the number of properties in the bag.
func (p Properties) Len() int {
	return len(p.order)
}

// String returns the value as a nullable string.
func (v Value) String() null.String {
	return null.NewString(v.Raw, !v.Null)
}

// Int returns the value as a nullable integer. Null properties and values
// that do not parse are both invalid.
func (v Value) Int() null.Int {
	if v.Null {
		return null.NewInt(0, false)
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return null.NewInt(0, false)
	}
	return null.IntFrom(n)
}

// Float returns the value as a nullable float.
func (v Value) Float() null.Float {
	if v.Null {
		return null.NewFloat(0, false)
	}
	f, err := strconv.ParseFloat(v.Raw, 64)
	if err != nil {
		return null.NewFloat(0, false)
	}
	return null.FloatFrom(f)
}

// Bool returns the value as a nullable boolean.
func (v Value) Bool() null.Bool {
	if v.Null {
		return null.NewBool(false, false)
	}
	b, err := strconv.ParseBool(v.Raw)
	if err != nil {
		return null.NewBool(false, false)
	}
	return null.BoolFrom(b)
}

// Time parses an Edm.DateTime value. The wire format is RFC 3339 with an
// optional zone designator; NuGet feeds usually omit the zone.
func (v Value) Time() null.Time {
	if v.Null || v.Raw == "" {
		return null.NewTime(time.Time{}, false)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v.Raw); err == nil {
			return null.TimeFrom(t)
		}
	}
	return null.NewTime(time.Time{}, false)
}

type xmlProperties struct {
	order  []string
	byName map[string]Value
}

func (p xmlProperties) toProperties() Properties {
	return Properties{order: p.order, byName: p.byName}
}

// UnmarshalXML walks the children of an m:properties element. Each child's
// local name is the property name; m:type and m:null attributes carry the
// declared type and nullness.
func (p *xmlProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.byName = map[string]Value{}
	for {
		tok, err := d.Token()
		if err != nil {
			return errors.Wrap(err, "malformed property bag")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v := Value{}
			for _, a := range t.Attr {
				switch a.Name.Local {
				case "type":
					v.Type = a.Value
				case "null":
					v.Null = a.Value == "true"
				}
			}
			var content struct {
				Raw string `xml:",chardata"`
			}
			if err := d.DecodeElement(&content, &t); err != nil {
				return errors.Wrapf(err, "malformed property %q", t.Name.Local)
			}
			v.Raw = content.Raw
			if _, dup := p.byName[t.Name.Local]; !dup {
				p.order = append(p.order, t.Name.Local)
			}
			p.byName[t.Name.Local] = v
		case xml.EndElement:
			return nil
		}
	}
}
