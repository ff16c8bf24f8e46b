// Package userdata manages the ~/.tweaks/ directory: path resolution, first
// run initialization and the doctor health check.
package userdata
