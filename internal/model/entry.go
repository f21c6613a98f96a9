package model

// Color is a badge colour as an SVG hex literal, e.g. "#4c1".
type Color string

// Entry is a cleaned, coloured service status ready to be rendered as one badge.
type Entry struct {
	Label    string // label as extracted, before cleaning
	Name     string // cleaned display name
	Status   string
	Color    Color
	Filename string // sanitized file stem, without extension
}
