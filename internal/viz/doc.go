// Package viz renders pipeline results for the terminal.
//
// Tables and labels are styled with lipgloss through a [Theme]; series and
// histograms are drawn with asciigraph; attractor projections use a
// braille [Canvas] at 2x4 sub-pixels per character.
package viz
