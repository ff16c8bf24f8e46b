// Package tweak defines the Tweak record and its Value, a tagged variant of
// boolean, number or text. The kind of a value is fixed when it is built, so
// callers switch on Kind instead of inspecting runtime types.
package tweak
