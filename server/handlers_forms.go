package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/materials-admin/clients"
	"github.com/jrsteele09/materials-admin/materials"
	"github.com/jrsteele09/materials-admin/purchases"
)

func (s *Server) MaterialCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		if _, err := ws.Materials.Add(r.Context(), applyMaterialForm(r, materials.Material{})); err != nil {
			redirectWithError(w, r, RouteMaterials, ws.Materials.Err())
			return
		}
		redirectSuccess(w, r, RouteMaterials)
	}
}

// MaterialUpdateHandler serves both the plain form post and htmx PUT.
func (s *Server) MaterialUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		// Start from the stored record so fields the form does not carry
		// survive the full-record PUT.
		current, found := ws.Materials.Find(id)
		if !found && ws.Materials.FetchAll(r.Context()) == nil {
			current, _ = ws.Materials.Find(id)
		}
		m := applyMaterialForm(r, current)
		m.ID = id
		if _, err := ws.Materials.Update(r.Context(), id, m); err != nil {
			redirectWithError(w, r, RouteMaterials, ws.Materials.Err())
			return
		}
		redirectSuccess(w, r, RouteMaterials)
	}
}

func (s *Server) MaterialDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		ws := workspaceFrom(r.Context())

		if err := ws.Materials.Remove(r.Context(), id); err != nil {
			redirectWithError(w, r, RouteMaterials, ws.Materials.Err())
			return
		}
		redirectSuccess(w, r, RouteMaterials)
	}
}

func (s *Server) ClientCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		c := clients.Client{
			Name:    strings.TrimSpace(r.FormValue("name")),
			Phone:   strings.TrimSpace(r.FormValue("phone")),
			Email:   strings.TrimSpace(r.FormValue("email")),
			Address: strings.TrimSpace(r.FormValue("address")),
		}
		if _, err := ws.Clients.Add(r.Context(), c); err != nil {
			redirectWithError(w, r, RouteClients, ws.Clients.Err())
			return
		}
		redirectSuccess(w, r, RouteClients)
	}
}

// PurchaseCreateHandler records a purchase. A blank price takes the
// material's current unit price.
func (s *Server) PurchaseCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		p := purchases.Purchase{
			ClientID:   formInt(r, "clientId"),
			MaterialID: formInt(r, "materialId"),
			Quantity:   formFloat(r, "quantity"),
			Price:      formFloat(r, "price"),
			Date:       strings.TrimSpace(r.FormValue("date")),
		}
		if strings.TrimSpace(r.FormValue("price")) == "" {
			if m, found := ws.Materials.Find(p.MaterialID); found {
				p.Price = m.Price
			}
		}
		if _, err := ws.Purchases.Add(r.Context(), p); err != nil {
			redirectWithError(w, r, RouteReports, ws.Purchases.Err())
			return
		}
		redirectSuccess(w, r, RouteReports)
	}
}

// applyMaterialForm copies the submitted fields onto m. Fields missing from
// the form keep m's values.
func applyMaterialForm(r *http.Request, m materials.Material) materials.Material {
	text := func(key string, dst *string) {
		if r.Form.Has(key) {
			*dst = strings.TrimSpace(r.FormValue(key))
		}
	}
	number := func(key string, dst *float64) {
		if r.Form.Has(key) {
			*dst = formFloat(r, key)
		}
	}
	text("name", &m.Name)
	text("category", &m.Category)
	text("unit", &m.Unit)
	number("quantity", &m.Quantity)
	number("price", &m.Price)
	text("supplier", &m.Supplier)
	return m
}

// pathID reads {id}. It answers 404 itself when the id is not a number.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// Form numbers are passed through as entered; unparsable input becomes zero
// and the server decides whether it is acceptable.
func formFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	return v
}

func formInt(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return v
}
