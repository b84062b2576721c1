// Package config defines the resolved configuration tree and the file codecs
// used to read and write it.
//
// A Tree maps dotted option keys ("model.lr") to typed cty values and records
// which source supplied each value. Files are read into a generic cty object
// and written back from a Tree, in YAML, JSON or HCL depending on the file
// extension.
package config
