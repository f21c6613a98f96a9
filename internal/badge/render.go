package badge

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dm/statusbadge/internal/model"
)

// Layout constants. Text widths are estimated per character; no font metrics
// are consulted.
const (
	Height = 28

	fontSizeService = 14
	fontSizeStatus  = 13
	fontFamily      = "'Segoe UI', Helvetica, Arial, sans-serif"
	cornerRadius    = 6

	gradientStart = "#4A4A4A"
	gradientEnd   = "#333333"
	textColor     = "#FFFFFF"
	dividerColor  = "#555555"

	serviceCharWidth = 9
	statusCharWidth  = 8
	paddingX         = 12
	dotGap           = 6
	dotRadius        = 5

	minServiceWidth = 60
	minStatusWidth  = 50
)

// Document is a rendered badge. It is a plain value; Render never shares
// state between documents.
type Document struct {
	Width  int
	Height int

	ServiceWidth int // left section, also the divider x
	StatusWidth  int // right section

	ServiceTextX float64
	TextY        float64
	DotX         float64
	DotY         float64
	StatusTextX  float64
	DividerY1    float64
	DividerY2    float64

	Color       model.Color
	ServiceText string
	StatusText  string
}

// serviceSectionWidth returns the width of the left section for a service
// name of n characters.
func serviceSectionWidth(n int) int {
	floor := max(minServiceWidth, utf8.RuneCountInString("Service")*serviceCharWidth+2*paddingX)
	return max(n*serviceCharWidth+2*paddingX, floor)
}

// statusSectionWidth returns the width of the right section for a status text
// of n characters.
func statusSectionWidth(n int) int {
	dot := 2*dotRadius + dotGap
	floor := max(minStatusWidth, dot+utf8.RuneCountInString("OK")*statusCharWidth+2*paddingX)
	return max(dot+n*statusCharWidth+2*paddingX, floor)
}

// Render lays out a badge for service with the given status and dot color.
// Underscores in the status are shown as spaces.
func Render(service, status string, color model.Color) Document {
	statusText := strings.TrimSpace(strings.ReplaceAll(status, "_", " "))

	serviceW := serviceSectionWidth(utf8.RuneCountInString(service))
	statusW := statusSectionWidth(utf8.RuneCountInString(statusText))

	dotX := float64(serviceW + paddingX + dotRadius)
	return Document{
		Width:        serviceW + statusW,
		Height:       Height,
		ServiceWidth: serviceW,
		StatusWidth:  statusW,
		ServiceTextX: float64(serviceW) / 2,
		TextY:        Height/2.0 + 1,
		DotX:         dotX,
		DotY:         Height / 2.0,
		StatusTextX:  dotX + dotRadius + dotGap,
		DividerY1:    Height * 0.2,
		DividerY2:    Height * 0.8,
		Color:        color,
		ServiceText:  service,
		StatusText:   statusText,
	}
}

// SVG serializes the document as a self-contained SVG image.
func (d Document) SVG() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" style="background: transparent;">`+"\n", d.Width, d.Height)
	b.WriteString("  <defs>\n")
	b.WriteString(`    <linearGradient id="badgeGradient" x1="0%" y1="0%" x2="0%" y2="100%">` + "\n")
	fmt.Fprintf(&b, `      <stop offset="0%%" style="stop-color:%s;stop-opacity:1" />`+"\n", gradientStart)
	fmt.Fprintf(&b, `      <stop offset="100%%" style="stop-color:%s;stop-opacity:1" />`+"\n", gradientEnd)
	b.WriteString("    </linearGradient>\n")
	b.WriteString("  </defs>\n")
	b.WriteString("  <g>\n")
	fmt.Fprintf(&b, `    <rect width="%d" height="%d" rx="%d" ry="%d" fill="url(#badgeGradient)" />`+"\n",
		d.Width, d.Height, cornerRadius, cornerRadius)
	fmt.Fprintf(&b, `    <line x1="%d" y1="%s" x2="%d" y2="%s" stroke="%s" stroke-width="1" stroke-opacity="0.5" />`+"\n",
		d.ServiceWidth, num(d.DividerY1), d.ServiceWidth, num(d.DividerY2), dividerColor)
	fmt.Fprintf(&b, `    <text x="%s" y="%s" fill="%s" text-anchor="middle" font-family="%s" font-size="%d" font-weight="500" dominant-baseline="middle">%s</text>`+"\n",
		num(d.ServiceTextX), num(d.TextY), textColor, fontFamily, fontSizeService, escape(d.ServiceText))
	fmt.Fprintf(&b, `    <circle cx="%s" cy="%s" r="%d" fill="%s" />`+"\n",
		num(d.DotX), num(d.DotY), dotRadius, escape(string(d.Color)))
	fmt.Fprintf(&b, `    <text x="%s" y="%s" fill="%s" text-anchor="start" font-family="%s" font-size="%d" font-weight="400" dominant-baseline="middle">%s</text>`+"\n",
		num(d.StatusTextX), num(d.TextY), textColor, fontFamily, fontSizeStatus, escape(d.StatusText))
	b.WriteString("  </g>\n")
	b.WriteString("</svg>")
	return []byte(b.String())
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
