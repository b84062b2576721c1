// Package registry maps class names to constructors and to the parameter
// manifests that describe them.
//
// Modules register classes (trainers, models, data modules, callbacks,
// optimizers) and the capability kinds those classes can fulfil. At startup
// the registry is validated so that every manifest matches the argument struct
// its constructor decodes into. At run time the registry turns resolved
// configuration values into constructed Go objects, expanding nested class
// selections along the way.
package registry
