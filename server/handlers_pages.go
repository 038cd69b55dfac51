package server

import (
	"context"
	"net/http"
	"sort"

	"github.com/jrsteele09/materials-admin/clients"
	"github.com/jrsteele09/materials-admin/materials"
	"github.com/jrsteele09/materials-admin/purchases"
	"github.com/jrsteele09/materials-admin/server/workspace"
	"golang.org/x/sync/errgroup"
)

const recentPurchaseCount = 5

// PurchaseRow is a purchase joined with its client and material names.
type PurchaseRow struct {
	purchases.Purchase
	ClientName   string
	MaterialName string
}

type ClientTotalRow struct {
	purchases.ClientTotal
	ClientName string
}

type DashboardData struct {
	MaterialCount   int
	ClientCount     int
	PurchaseCount   int
	StockValue      float64
	RecentPurchases []PurchaseRow
	Errors          []string
}

type ReportsData struct {
	Materials    []materials.Material
	Clients      []clients.Client
	Purchases    []PurchaseRow
	ClientTotals []ClientTotalRow
	Revenue      float64
	StockValue   float64
	Errors       []string
}

// snapshot holds the three collections after a concurrent load.
type snapshot struct {
	materials []materials.Material
	clients   []clients.Client
	purchases []purchases.Purchase
	errors    []string
}

// loadAll refreshes the three stores concurrently. A failing store keeps its
// previous list; its message is collected for the page.
func (s *Server) loadAll(ctx context.Context, ws *workspace.Workspace) snapshot {
	var g errgroup.Group
	g.Go(func() error { return ws.Materials.FetchAll(ctx) })
	g.Go(func() error { return ws.Clients.FetchAll(ctx) })
	g.Go(func() error { return ws.Purchases.FetchAll(ctx) })
	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("workspace", ws.ID).Msg("loading collections")
	}

	snap := snapshot{
		materials: ws.Materials.Items(),
		clients:   ws.Clients.Items(),
		purchases: ws.Purchases.Items(),
	}
	for _, msg := range []string{ws.Materials.Err(), ws.Clients.Err(), ws.Purchases.Err()} {
		if msg != "" {
			snap.errors = append(snap.errors, msg)
		}
	}
	return snap
}

func (snap snapshot) stockValue() float64 {
	var total float64
	for _, m := range snap.materials {
		total += m.StockValue()
	}
	return total
}

func (snap snapshot) purchaseRows() []PurchaseRow {
	clientIndex := clients.ByID(snap.clients)
	materialNames := make(map[int64]string, len(snap.materials))
	for _, m := range snap.materials {
		materialNames[m.ID] = m.Name
	}

	rows := make([]PurchaseRow, 0, len(snap.purchases))
	for _, p := range snap.purchases {
		rows = append(rows, PurchaseRow{
			Purchase:     p,
			ClientName:   clientIndex[p.ClientID].Name,
			MaterialName: materialNames[p.MaterialID],
		})
	}
	// Newest first. Dates are free text so fall back to id order.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

// DashboardHandler renders the summary page
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.loadAll(r.Context(), workspaceFrom(r.Context()))

		rows := snap.purchaseRows()
		if len(rows) > recentPurchaseCount {
			rows = rows[:recentPurchaseCount]
		}
		s.render(w, r, http.StatusOK, "dashboard.html", PageData{
			Title: "Dashboard",
			Content: DashboardData{
				MaterialCount:   len(snap.materials),
				ClientCount:     len(snap.clients),
				PurchaseCount:   len(snap.purchases),
				StockValue:      snap.stockValue(),
				RecentPurchases: rows,
				Errors:          snap.errors,
			},
		})
	}
}

func (s *Server) ReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.loadAll(r.Context(), workspaceFrom(r.Context()))

		clientIndex := clients.ByID(snap.clients)
		totals := purchases.TotalsByClient(snap.purchases)
		totalRows := make([]ClientTotalRow, 0, len(totals))
		var revenue float64
		for _, t := range totals {
			revenue += t.Total
			totalRows = append(totalRows, ClientTotalRow{ClientTotal: t, ClientName: clientIndex[t.ClientID].Name})
		}

		s.render(w, r, http.StatusOK, "reports.html", PageData{
			Title: "Reports",
			Content: ReportsData{
				Materials:    snap.materials,
				Clients:      snap.clients,
				Purchases:    snap.purchaseRows(),
				ClientTotals: totalRows,
				Revenue:      revenue,
				StockValue:   snap.stockValue(),
				Errors:       snap.errors,
			},
		})
	}
}

func (s *Server) MaterialsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		_ = ws.Materials.FetchAll(r.Context())

		s.render(w, r, http.StatusOK, "materials.html", PageData{
			Title:   "Materials",
			Error:   ws.Materials.Err(),
			Content: ws.Materials.Items(),
		})
	}
}

func (s *Server) ClientsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		_ = ws.Clients.FetchAll(r.Context())

		s.render(w, r, http.StatusOK, "clients.html", PageData{
			Title:   "Clients",
			Error:   ws.Clients.Err(),
			Content: ws.Clients.Items(),
		})
	}
}
