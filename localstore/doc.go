// Package localstore provides persistent key/value stores that hold the
// client token read by authstate.
package localstore
