package materials

import (
	"encoding/json"

	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/tokenstore"
)

// Material is a stock item the business buys and sells.
type Material struct {
	ID       int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category,omitempty" yaml:"category,omitempty"`
	Unit     string  `json:"unit,omitempty" yaml:"unit,omitempty"` // kg, m, pcs...
	Quantity float64 `json:"quantity" yaml:"quantity"`             // Units in stock
	Price    float64 `json:"price" yaml:"price"`                   // Price per unit
	Supplier string  `json:"supplier,omitempty" yaml:"supplier,omitempty"`

	// Attributes is the record as the server sent it, including fields not
	// modelled above. They are sent back unchanged on update.
	Attributes resource.Attributes `json:"-" yaml:"-"`
}

func (m *Material) UnmarshalJSON(data []byte) error {
	attrs, err := resource.DecodeAttributes(data)
	if err != nil || attrs == nil {
		return err
	}
	f := attrs.Fields()
	*m = Material{
		ID:         f.Int("id"),
		Name:       f.String("name"),
		Category:   f.String("category"),
		Unit:       f.String("unit"),
		Quantity:   f.Float("quantity"),
		Price:      f.Float("price"),
		Supplier:   f.String("supplier"),
		Attributes: attrs,
	}
	return f.Err()
}

func (m Material) MarshalJSON() ([]byte, error) {
	out := m.Attributes.Clone()
	out.SetID(m.ID)
	out["name"] = m.Name
	out.SetString("category", m.Category)
	out.SetString("unit", m.Unit)
	out["quantity"] = m.Quantity
	out["price"] = m.Price
	out.SetString("supplier", m.Supplier)
	return json.Marshal(out)
}

func (m Material) RecordID() int64 {
	return m.ID
}

// StockValue is quantity times unit price.
func (m Material) StockValue() float64 {
	return m.Quantity * m.Price
}

// Endpoint is the only collection that supports update and delete.
var Endpoint = resource.Endpoint{
	Name:         "materials",
	Path:         "/materials",
	Capabilities: resource.CanUpdate | resource.CanRemove,
	Messages: resource.Messages{
		Fetch:  "Failed to fetch materials",
		Add:    "Failed to add material",
		Update: "Failed to update material",
		Remove: "Failed to delete material",
	},
}

type Store = resource.Store[Material]

func NewStore(api apiclient.Requester, tokens tokenstore.Reader, opts ...resource.Option) *Store {
	return resource.New[Material](api, tokens, Endpoint, opts...)
}
