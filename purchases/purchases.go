package purchases

import (
	"encoding/json"
	"sort"

	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/tokenstore"
)

// Purchase records a client buying a quantity of a material.
type Purchase struct {
	ID         int64   `json:"id,omitempty" yaml:"id,omitempty"`
	ClientID   int64   `json:"clientId" yaml:"clientId"`
	MaterialID int64   `json:"materialId" yaml:"materialId"`
	Quantity   float64 `json:"quantity" yaml:"quantity"`
	Price      float64 `json:"price" yaml:"price"`                   // Unit price at the time of sale
	Date       string  `json:"date,omitempty" yaml:"date,omitempty"` // As entered, the server does not normalise it

	Attributes resource.Attributes `json:"-" yaml:"-"`
}

func (p *Purchase) UnmarshalJSON(data []byte) error {
	attrs, err := resource.DecodeAttributes(data)
	if err != nil || attrs == nil {
		return err
	}
	f := attrs.Fields()
	*p = Purchase{
		ID:         f.Int("id"),
		ClientID:   f.Int("clientId"),
		MaterialID: f.Int("materialId"),
		Quantity:   f.Float("quantity"),
		Price:      f.Float("price"),
		Date:       f.String("date"),
		Attributes: attrs,
	}
	return f.Err()
}

func (p Purchase) MarshalJSON() ([]byte, error) {
	out := p.Attributes.Clone()
	out.SetID(p.ID)
	out["clientId"] = p.ClientID
	out["materialId"] = p.MaterialID
	out["quantity"] = p.Quantity
	out["price"] = p.Price
	out.SetString("date", p.Date)
	return json.Marshal(out)
}

func (p Purchase) RecordID() int64 {
	return p.ID
}

func (p Purchase) Total() float64 {
	return p.Quantity * p.Price
}

// Endpoint supports listing and creating only.
var Endpoint = resource.Endpoint{
	Name: "purchases",
	Path: "/purchases",
	Messages: resource.Messages{
		Fetch: "Failed to fetch purchases",
		Add:   "Failed to add purchase",
	},
}

type Store = resource.Store[Purchase]

func NewStore(api apiclient.Requester, tokens tokenstore.Reader, opts ...resource.Option) *Store {
	return resource.New[Purchase](api, tokens, Endpoint, opts...)
}

// ClientTotal is the amount a client has spent.
type ClientTotal struct {
	ClientID  int64
	Purchases int
	Total     float64
}

// TotalsByClient sums purchases per client, largest spend first.
func TotalsByClient(list []Purchase) []ClientTotal {
	index := make(map[int64]*ClientTotal)
	for _, p := range list {
		ct, ok := index[p.ClientID]
		if !ok {
			ct = &ClientTotal{ClientID: p.ClientID}
			index[p.ClientID] = ct
		}
		ct.Purchases++
		ct.Total += p.Total()
	}

	out := make([]ClientTotal, 0, len(index))
	for _, ct := range index {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}
