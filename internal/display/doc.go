// Package display renders snackbar widgets in the terminal.
package display
