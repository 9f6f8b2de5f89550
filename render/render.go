// Package render turns cart snapshots into the HTML fragment the storefront
// swaps into its cart panel, along with the badge count and total.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"farmstore-backend/cart"
)

//go:embed templates/*.html
var templateFS embed.FS

// Icons resolves a product id to the glyph shown beside the line.
type Icons interface {
	Icon(productID string) string
}

// View is everything a page needs to redraw the cart.
type View struct {
	HTML  string `json:"html"`
	Count int    `json:"count"`
	Total string `json:"total"`
	Empty bool   `json:"empty"`
}

type line struct {
	ID       string
	Name     string
	Icon     string
	Price    string
	Quantity int
}

type viewData struct {
	Empty bool
	Lines []line
	Count int
	Total string
}

type Renderer struct {
	tmpl  *template.Template
	icons Icons
}

func NewRenderer(icons Icons) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse cart templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, icons: icons}, nil
}

// Render builds a full replacement view for snap. Names and ids are escaped.
func (r *Renderer) Render(snap cart.Snapshot) (View, error) {
	data := viewData{
		Empty: snap.Empty(),
		Count: snap.ItemCount,
		Total: cart.FormatMoney(snap.Total),
		Lines: make([]line, 0, len(snap.Items)),
	}
	for _, it := range snap.Items {
		data.Lines = append(data.Lines, line{
			ID:       it.ID,
			Name:     it.Name,
			Icon:     r.icon(it.ID),
			Price:    cart.FormatMoney(it.UnitPrice),
			Quantity: it.Quantity,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "cart", data); err != nil {
		return View{}, fmt.Errorf("render cart: %w", err)
	}

	return View{
		HTML:  buf.String(),
		Count: data.Count,
		Total: data.Total,
		Empty: data.Empty,
	}, nil
}

func (r *Renderer) icon(id string) string {
	if r.icons == nil {
		return "📦"
	}
	return r.icons.Icon(id)
}
