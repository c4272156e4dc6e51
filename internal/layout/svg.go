package layout

import (
	"fmt"
	"math"
	"strings"

	"drafted/internal/domain"
)

// DefaultPxPerFt is the default plan rendering scale.
const DefaultPxPerFt = 12

const svgMarginPx = 8

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// RenderPlanSVG draws the plan as SVG markup: the outline, then one
// rectangle with a centered label per room. Room names are escaped so
// arbitrary provider output cannot break the XML.
func RenderPlanSVG(plan *domain.PlanGraph, pxPerFt int) string {
	if pxPerFt <= 0 {
		pxPerFt = DefaultPxPerFt
	}
	scale := float64(pxPerFt)
	w := int(math.Round(plan.OutlineFt.W * scale))
	h := int(math.Round(plan.OutlineFt.H * scale))

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, w, h, w, h)
	b.WriteString("\n")
	b.WriteString(`<rect width="100%" height="100%" fill="#f8fafc"/>`)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#0f172a" stroke-width="3"/>`,
		svgMarginPx, svgMarginPx, w-2*svgMarginPx, h-2*svgMarginPx)
	b.WriteString("\n")

	for _, room := range plan.Rooms {
		x := svgMarginPx + room.RectFt.X*scale
		y := svgMarginPx + room.RectFt.Y*scale
		rw := room.RectFt.W * scale
		rh := room.RectFt.H * scale
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="white" stroke="#0f172a" stroke-width="2"/>`,
			x, y, rw, rh)
		b.WriteString("\n")
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="ui-sans-serif,system-ui" font-size="14" fill="#0f172a">%s</text>`,
			x+rw/2, y+rh/2, xmlEscaper.Replace(room.Name))
		b.WriteString("\n")
	}

	b.WriteString("</svg>")
	return b.String()
}
