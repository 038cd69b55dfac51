package clients

import (
	"encoding/json"

	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/tokenstore"
)

// Client is a customer that purchases materials.
type Client struct {
	ID      int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	Attributes resource.Attributes `json:"-" yaml:"-"` // The full server record
}

func (c *Client) UnmarshalJSON(data []byte) error {
	attrs, err := resource.DecodeAttributes(data)
	if err != nil || attrs == nil {
		return err
	}
	f := attrs.Fields()
	*c = Client{
		ID:         f.Int("id"),
		Name:       f.String("name"),
		Phone:      f.String("phone"),
		Email:      f.String("email"),
		Address:    f.String("address"),
		Attributes: attrs,
	}
	return f.Err()
}

func (c Client) MarshalJSON() ([]byte, error) {
	out := c.Attributes.Clone()
	out.SetID(c.ID)
	out["name"] = c.Name
	out.SetString("phone", c.Phone)
	out.SetString("email", c.Email)
	out.SetString("address", c.Address)
	return json.Marshal(out)
}

func (c Client) RecordID() int64 {
	return c.ID
}

// Endpoint supports listing and creating only.
var Endpoint = resource.Endpoint{
	Name: "clients",
	Path: "/clients",
	Messages: resource.Messages{
		Fetch: "Failed to fetch clients",
		Add:   "Failed to add client",
	},
}

type Store = resource.Store[Client]

func NewStore(api apiclient.Requester, tokens tokenstore.Reader, opts ...resource.Option) *Store {
	return resource.New[Client](api, tokens, Endpoint, opts...)
}

// ByID indexes clients by id for lookups when rendering purchases.
func ByID(list []Client) map[int64]Client {
	out := make(map[int64]Client, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out
}
