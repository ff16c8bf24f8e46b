// Package presentation groups resolved tweaks into titled sections for
// display and renders them as terminal tables.
package presentation
