// Package app contains the core application logic of the gridml CLI. It
// defines the main App struct, its configuration, and the submit-and-print
// lifecycle, decoupled from flag parsing and process exit handling.
package app
